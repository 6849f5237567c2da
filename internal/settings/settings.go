// Package settings holds the application-wide language and theme.
package settings

import (
	"fmt"
	"sync"

	"github.com/raine/balla/internal/i18n"
	"github.com/rs/zerolog/log"
)

// Persisted preference keys.
const (
	KeyLanguage = "balla-language"
	KeyTheme    = "balla-theme"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

const (
	DefaultLanguage = i18n.Arabic
	DefaultTheme    = Light
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unsupported theme %q (use light or dark)", s)
}

// Store is the persistence the settings need.
type Store interface {
	GetPreference(key string) (string, bool, error)
	SetPreference(key, value string) error
	DeletePreference(key string) error
}

// Settings is the application context: one instance per process, shared
// by reference. It is safe for concurrent use.
type Settings struct {
	mu       sync.RWMutex
	store    Store
	language i18n.Language
	theme    Theme
}

// Load reads persisted preferences. Missing or invalid values fall back to
// the defaults. A nil store keeps settings in memory only.
func Load(store Store) (*Settings, error) {
	s := &Settings{store: store, language: DefaultLanguage, theme: DefaultTheme}
	if store == nil {
		return s, nil
	}

	if v, ok, err := store.GetPreference(KeyLanguage); err != nil {
		return nil, fmt.Errorf("failed to load language: %w", err)
	} else if ok {
		if lang, perr := i18n.ParseLanguage(v); perr == nil {
			s.language = lang
		} else {
			log.Warn().Str("value", v).Msg("ignoring invalid stored language")
		}
	}

	if v, ok, err := store.GetPreference(KeyTheme); err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	} else if ok {
		if theme, perr := ParseTheme(v); perr == nil {
			s.theme = theme
		} else {
			log.Warn().Str("value", v).Msg("ignoring invalid stored theme")
		}
	}

	return s, nil
}

func (s *Settings) Language() i18n.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *Settings) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// IsRTL reports whether the current language is right to left.
func (s *Settings) IsRTL() bool {
	return i18n.IsRTL(s.Language())
}

// T translates key into the current language.
func (s *Settings) T(key i18n.Key) string {
	return i18n.T(s.Language(), key)
}

// SetLanguage updates and persists the language. The in-memory value is
// only changed once it has been persisted.
func (s *Settings) SetLanguage(lang i18n.Language) error {
	if _, err := i18n.ParseLanguage(string(lang)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(KeyLanguage, string(lang)); err != nil {
		return err
	}
	s.language = lang
	return nil
}

// SetTheme updates and persists the theme.
func (s *Settings) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(KeyTheme, string(theme)); err != nil {
		return err
	}
	s.theme = theme
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Settings) ToggleTheme() (Theme, error) {
	next := Dark
	if s.Theme() == Dark {
		next = Light
	}
	if err := s.SetTheme(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}

// Reset forgets the stored language and theme and returns to the
// defaults.
func (s *Settings) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		for _, key := range []string{KeyLanguage, KeyTheme} {
			if err := s.store.DeletePreference(key); err != nil {
				return fmt.Errorf("failed to reset %s: %w", key, err)
			}
		}
	}
	s.language = DefaultLanguage
	s.theme = DefaultTheme
	return nil
}

func (s *Settings) persist(key, value string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SetPreference(key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
