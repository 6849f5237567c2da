package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Preference is a persisted key/value pair.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// AppraisalCacheEntry is a cached model reply, stored as raw JSON.
type AppraisalCacheEntry struct {
	Reply     string
	CreatedAt time.Time
}

// PreferenceStore persists application preferences across runs.
type PreferenceStore interface {
	GetPreference(key string) (string, bool, error)
	SetPreference(key, value string) error
	DeletePreference(key string) error
	GetAllPreferences() ([]Preference, error)
	Close() error
}

// SQLiteStore implements PreferenceStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ PreferenceStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout so the shell and server can share a file
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", dbPath).Msg("failed to restrict database permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}

	appraisalCacheQuery := `
	CREATE TABLE IF NOT EXISTS appraisal_cache (
		cache_key TEXT PRIMARY KEY,
		reply TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(appraisalCacheQuery); err != nil {
		return fmt.Errorf("failed to create appraisal_cache table: %w", err)
	}
	return nil
}

// GetPreference returns the stored value for key. The bool is false when
// nothing is stored.
func (s *SQLiteStore) GetPreference(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference: %w", err)
	}
	return value, true, nil
}

// SetPreference stores or updates a preference.
func (s *SQLiteStore) SetPreference(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// DeletePreference removes a preference. Deleting a missing key is not an
// error.
func (s *SQLiteStore) DeletePreference(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return nil
}

// GetAllPreferences returns every stored preference ordered by key.
func (s *SQLiteStore) GetAllPreferences() ([]Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT key, value, updated_at FROM preferences ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// GetAppraisalCache retrieves a cached reply by key.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetAppraisalCache(key string) (*AppraisalCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry AppraisalCacheEntry
	err := s.db.QueryRow(
		"SELECT reply, created_at FROM appraisal_cache WHERE cache_key = ?",
		key,
	).Scan(&entry.Reply, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query appraisal cache: %w", err)
	}
	return &entry, nil
}

// SetAppraisalCache stores a reply in the cache.
func (s *SQLiteStore) SetAppraisalCache(key, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO appraisal_cache (cache_key, reply, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			reply = excluded.reply,
			created_at = excluded.created_at
	`, key, reply, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cache appraisal: %w", err)
	}
	return nil
}

// PruneAppraisalCache deletes entries created before cutoff and returns how
// many were removed.
func (s *SQLiteStore) PruneAppraisalCache(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM appraisal_cache WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune appraisal cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
