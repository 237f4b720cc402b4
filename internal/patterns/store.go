// Package patterns manages the list of reusable memo labels.
package patterns

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/models"
)

// Store holds the memo patterns in memory and mirrors every mutation to kv.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	items    []string
	onChange func()
}

// Load reads the saved pattern list, falling back to the defaults when none
// was saved. onChange, if non-nil, runs after every successful mutation.
func Load(store kv.Store, onChange func()) (*Store, error) {
	s := &Store{kv: store, onChange: onChange}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory list with what is currently in storage.
func (s *Store) Reload() error {
	items, err := read(s.kv)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func read(store kv.Store) ([]string, error) {
	raw, ok, err := store.Get(kv.KeyPatterns)
	if err != nil {
		return nil, err
	}
	return decode(raw, ok)
}

func decode(raw string, ok bool) ([]string, error) {
	if !ok || raw == "" {
		return slices.Clone(models.DefaultMemoPatterns), nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("patterns: decode %s: %w", kv.KeyPatterns, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// List returns a copy of the patterns in display order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Add appends pattern after trimming whitespace. Empty or duplicate patterns
// are ignored and reported with added == false.
func (s *Store) Add(pattern string) (added bool, err error) {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return false, nil
	}
	changed, err := s.mutate(func(items []string) ([]string, bool) {
		if slices.Contains(items, p) {
			return items, false
		}
		return append(items, p), true
	})
	if err != nil || !changed {
		return false, err
	}
	s.notify()
	return true, nil
}

// Remove deletes the pattern at index. An out-of-range index is a no-op.
func (s *Store) Remove(index int) error {
	changed, err := s.mutate(func(items []string) ([]string, bool) {
		if index < 0 || index >= len(items) {
			return items, false
		}
		return slices.Delete(items, index, index+1), true
	})
	if err != nil || !changed {
		return err
	}
	s.notify()
	return nil
}

// mutate applies fn to the list as currently stored, so changes written by
// other processes are kept. The in-memory list only changes after a
// successful write, or to pick up the stored list when fn changes nothing.
func (s *Store) mutate(fn func(items []string) ([]string, bool)) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []string
	err = s.kv.Update(kv.KeyPatterns, func(raw string, ok bool) (string, bool, error) {
		current, err := decode(raw, ok)
		if err != nil {
			return "", false, err
		}
		next, changed = fn(current)
		if !changed {
			return "", false, nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return "", false, fmt.Errorf("patterns: encode: %w", err)
		}
		return string(data), true, nil
	})
	if err != nil {
		return false, fmt.Errorf("patterns: save: %w", err)
	}
	s.items = next
	return changed, nil
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
