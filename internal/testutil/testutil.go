// Package testutil provides shared test helpers for setting up stores and export directories.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/storage"
)

// TestKV creates a temporary SQLite key-value store that is automatically cleaned up.
func TestKV(t *testing.T) *kv.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "streammark-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	store, err := kv.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestExports creates a temporary export directory.
func TestExports(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// StartTime is a fixed stream start time lookup.
type StartTime struct {
	Start time.Time
	Err   error

	// LastKey is the API key passed to the most recent lookup.
	LastKey string
}

// ActualStartTime returns the configured start time or error.
func (s *StartTime) ActualStartTime(ctx context.Context, _, apiKey string) (time.Time, error) {
	s.LastKey = apiKey
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	return s.Start, s.Err
}

// Clock returns a func that advances by step on each call, starting at start+step.
func Clock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

// Eventually polls fn until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
