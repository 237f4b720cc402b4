package settings

import (
	"testing"

	"github.com/starford/streammark/internal/kv"
)

func TestAPIKey_SetGet(t *testing.T) {
	m := kv.NewMemory()
	a := NewAPIKey(m)
	if v, err := a.Get(); err != nil || v != "" {
		t.Fatalf("Get empty = (%q, %v)", v, err)
	}
	if err := a.Set("AIzaSecret"); err != nil {
		t.Fatal(err)
	}
	if raw, _, _ := m.Get(kv.KeyAPIKey); raw != "AIzaSecret" {
		t.Errorf("stored = %q", raw)
	}
}

func TestAPIKey_SeedIfEmpty(t *testing.T) {
	a := NewAPIKey(kv.NewMemory())
	if err := a.SeedIfEmpty("from-config"); err != nil {
		t.Fatal(err)
	}
	_ = a.Set("saved")
	_ = a.SeedIfEmpty("from-config")
	if v, _ := a.Get(); v != "saved" {
		t.Errorf("Get = %q, want saved key to win", v)
	}
}

func TestAPIKey_SeedDoesNotOverrideClearedKey(t *testing.T) {
	a := NewAPIKey(kv.NewMemory())
	_ = a.Set("")
	_ = a.SeedIfEmpty("from-config")
	if v, _ := a.Get(); v != "" {
		t.Errorf("Get = %q, want explicitly cleared key to stay empty", v)
	}
}

func TestAPIKey_Resolve(t *testing.T) {
	a := NewAPIKey(kv.NewMemory())
	_ = a.Set("saved")
	if v, _ := a.Resolve("flag"); v != "flag" {
		t.Errorf("Resolve(flag) = %q", v)
	}
	if v, _ := a.Resolve("  "); v != "saved" {
		t.Errorf("Resolve(blank) = %q", v)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "***",
		"abcd":       "****",
		"AIzaSyABCD": "******ABCD",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
