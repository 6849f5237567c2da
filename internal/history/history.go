// Package history keeps the appraisals completed during the current run.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/region"
)

// Entry is one completed appraisal.
type Entry struct {
	ID     string
	At     time.Time
	Region region.ID
	Result *analysis.Result
}

// History is an in-memory list of entries, newest first. It is safe for
// concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func New() *History {
	return &History{now: time.Now}
}

// Add prepends a successful result and returns the new entry.
func (h *History) Add(reg region.ID, result *analysis.Result) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := Entry{
		ID:     uuid.New().String(),
		At:     h.now(),
		Region: reg,
		Result: result,
	}
	h.entries = append([]Entry{e}, h.entries...)
	return e
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of all entries, newest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Latest returns the most recent entry.
func (h *History) Latest() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

// Search returns entries whose item name or type contains query, ignoring
// case. An empty query matches everything.
func (h *History) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return h.Entries()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Entry
	for _, e := range h.entries {
		if e.Result == nil {
			continue
		}
		if strings.Contains(strings.ToLower(e.Result.ItemName), q) ||
			strings.Contains(strings.ToLower(e.Result.ItemType), q) {
			out = append(out, e)
		}
	}
	return out
}
