package kv

import (
	"errors"
	"sync"
)

// Memory is an in-process Store used by tests.
type Memory struct {
	mu     sync.Mutex
	values map[string]string

	// FailWrites makes every Set return ErrWriteFailed.
	FailWrites bool
}

// ErrWriteFailed is returned by Memory.Set when FailWrites is on.
var ErrWriteFailed = errors.New("kv: write failed")

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the stored value for key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.values[key] = value
	return nil
}

// Update applies fn under the store's lock.
func (m *Memory) Update(key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.values[key]
	next, write, err := fn(old, ok)
	if err != nil || !write {
		return err
	}
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.values[key] = next
	return nil
}
