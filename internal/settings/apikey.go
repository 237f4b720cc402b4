// Package settings persists user settings that are not part of the log.
package settings

import (
	"strings"

	"github.com/starford/streammark/internal/kv"
)

// APIKey stores the YouTube Data API key as an opaque string.
type APIKey struct {
	kv kv.Store
}

// NewAPIKey returns an APIKey backed by store.
func NewAPIKey(store kv.Store) *APIKey {
	return &APIKey{kv: store}
}

// Get returns the saved key, or "" when none was saved.
func (a *APIKey) Get() (string, error) {
	v, _, err := a.kv.Get(kv.KeyAPIKey)
	return v, err
}

// Set saves key verbatim, replacing any previous key.
func (a *APIKey) Set(key string) error {
	return a.kv.Set(kv.KeyAPIKey, key)
}

// SeedIfEmpty saves key only when no key has been saved yet.
func (a *APIKey) SeedIfEmpty(key string) error {
	if key == "" {
		return nil
	}
	return a.kv.Update(kv.KeyAPIKey, func(_ string, ok bool) (string, bool, error) {
		return key, !ok, nil
	})
}

// Resolve returns override when set, otherwise the saved key.
func (a *APIKey) Resolve(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	return a.Get()
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
