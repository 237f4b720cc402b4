// Package logbook records timestamped moments and keeps them sorted by time.
package logbook

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/models"
)

// ResetPrompt is shown to the user before the log is cleared.
const ResetPrompt = "Reset all recorded moments?"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Store holds the moment log in memory and mirrors every mutation to kv.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	now      func() time.Time
	entries  []models.LogEntry
	onChange func()
}

// Load reads the saved log. now defaults to time.Now when nil.
func Load(store kv.Store, now func() time.Time, onChange func()) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	s := &Store{kv: store, now: now, onChange: onChange}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory log with what is currently in storage.
func (s *Store) Reload() error {
	raw, ok, err := s.kv.Get(kv.KeyLogs)
	if err != nil {
		return err
	}
	entries, err := decode(raw, ok)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

func decode(raw string, ok bool) ([]models.LogEntry, error) {
	entries := []models.LogEntry{}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("logbook: decode %s: %w", kv.KeyLogs, err)
		}
		if entries == nil {
			entries = []models.LogEntry{}
		}
		sortEntries(entries)
	}
	return entries, nil
}

// Entries returns a copy of the log in non-decreasing timestamp order.
func (s *Store) Entries() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Len returns the number of recorded moments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Record stamps memo with the current time and inserts it.
func (s *Store) Record(memo string) (models.LogEntry, error) {
	return s.Insert(models.LogEntry{Timestamp: s.now().UnixMilli(), Memo: memo})
}

// Insert adds an entry with an explicit timestamp and re-sorts the log.
// The entry is merged into the log as currently stored, so moments written
// by other processes are kept.
func (s *Store) Insert(e models.LogEntry) (models.LogEntry, error) {
	err := s.commit(func(current []models.LogEntry) []models.LogEntry {
		next := append(current, e)
		sortEntries(next)
		return next
	})
	if err != nil {
		return models.LogEntry{}, err
	}
	s.notify()
	return e, nil
}

// Reset clears the log after c confirms. It reports whether the log was cleared.
func (s *Store) Reset(c Confirmer) (bool, error) {
	if c == nil || !c.Confirm(ResetPrompt) {
		return false, nil
	}
	err := s.commit(func([]models.LogEntry) []models.LogEntry {
		return []models.LogEntry{}
	})
	if err != nil {
		return false, err
	}
	s.notify()
	return true, nil
}

// commit applies fn to the stored log inside one kv update and swaps the
// result in after it was written.
func (s *Store) commit(fn func(current []models.LogEntry) []models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []models.LogEntry
	err := s.kv.Update(kv.KeyLogs, func(raw string, ok bool) (string, bool, error) {
		current, err := decode(raw, ok)
		if err != nil {
			return "", false, err
		}
		next = fn(current)
		data, err := json.Marshal(next)
		if err != nil {
			return "", false, fmt.Errorf("logbook: encode: %w", err)
		}
		return string(data), true, nil
	})
	if err != nil {
		return fmt.Errorf("logbook: save: %w", err)
	}
	s.entries = next
	return nil
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

func sortEntries(entries []models.LogEntry) {
	slices.SortStableFunc(entries, func(a, b models.LogEntry) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
}
