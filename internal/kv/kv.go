// Package kv provides the durable key-value storage that backs the pattern
// list, the moment log and the saved API key.
package kv

// Storage keys.
const (
	KeyLogs     = "timestampLogs"
	KeyPatterns = "memoPatterns"
	KeyAPIKey   = "youtubeApiKey"
)

// Store is a string key-value store. Writes are synchronous and last write wins.
type Store interface {
	// Get returns the value for key; ok is false when the key was never set.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Update reads key and writes fn's result atomically with respect to
	// other writers, including other processes sharing the database.
	Update(key string, fn UpdateFunc) error
}

// UpdateFunc derives the next value from the current one. ok is false when
// the key was never set. Returning write == false leaves the key untouched.
type UpdateFunc func(old string, ok bool) (next string, write bool, err error)

// Verify implementations satisfy Store at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
