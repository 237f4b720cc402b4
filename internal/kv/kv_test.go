package kv

import (
	"errors"
	"os"
	"sync"
	"testing"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "streammark-kv-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_GetMissing(t *testing.T) {
	s := testSQLite(t)
	v, ok, err := s.Get(KeyLogs)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get missing = (%q, %v), want empty and false", v, ok)
	}
}

func TestSQLite_SetOverwrites(t *testing.T) {
	s := testSQLite(t)
	if err := s.Set(KeyPatterns, `["a"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyPatterns, `["a","b"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(KeyPatterns)
	if err != nil || !ok {
		t.Fatalf("Get: %v ok=%v", err, ok)
	}
	if v != `["a","b"]` {
		t.Errorf("value = %q", v)
	}
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	f, err := os.CreateTemp("", "streammark-kv-reopen-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyAPIKey, "secret"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	v, ok, _ := s.Get(KeyAPIKey)
	if !ok || v != "secret" {
		t.Errorf("after reopen = (%q, %v)", v, ok)
	}
}

func TestMemory_FailWrites(t *testing.T) {
	m := NewMemory()
	m.FailWrites = true
	if err := m.Set("k", "v"); err != ErrWriteFailed {
		t.Fatalf("Set err = %v, want ErrWriteFailed", err)
	}
	if _, ok, _ := m.Get("k"); ok {
		t.Error("failed write should not be visible")
	}
}

func TestSQLite_UpdateSeesOtherHandle(t *testing.T) {
	a := testSQLite(t)
	b, err := Open(a.Path())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })

	if err := a.Set(KeyPatterns, "a"); err != nil {
		t.Fatal(err)
	}
	err = b.Update(KeyPatterns, func(old string, ok bool) (string, bool, error) {
		if !ok || old != "a" {
			t.Errorf("old = (%q, %v), want a written by the other handle", old, ok)
		}
		return old + "b", true, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v, _, _ := a.Get(KeyPatterns); v != "ab" {
		t.Errorf("value = %q, want ab", v)
	}
}

func TestSQLite_UpdateConcurrentHandles(t *testing.T) {
	a := testSQLite(t)
	b, err := Open(a.Path())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })

	appendOne := func(s *SQLite) error {
		return s.Update(KeyLogs, func(old string, _ bool) (string, bool, error) {
			return old + "x", true, nil
		})
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		for _, s := range []*SQLite{a, b} {
			wg.Add(1)
			go func(s *SQLite) {
				defer wg.Done()
				errs <- appendOne(s)
			}(s)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if v, _, _ := a.Get(KeyLogs); len(v) != 40 {
		t.Errorf("len = %d, want 40 (lost updates)", len(v))
	}
}

func TestSQLite_UpdateSkipAndError(t *testing.T) {
	s := testSQLite(t)
	_ = s.Set(KeyAPIKey, "keep")

	if err := s.Update(KeyAPIKey, func(string, bool) (string, bool, error) { return "drop", false, nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := s.Update(KeyAPIKey, func(string, bool) (string, bool, error) { return "drop", true, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if v, _, _ := s.Get(KeyAPIKey); v != "keep" {
		t.Errorf("value = %q, want keep", v)
	}
}

func TestMemory_UpdateFailWrites(t *testing.T) {
	m := NewMemory()
	_ = m.Set("k", "v")
	m.FailWrites = true
	err := m.Update("k", func(old string, _ bool) (string, bool, error) { return old + "!", true, nil })
	if err != ErrWriteFailed {
		t.Fatalf("err = %v", err)
	}
	if v, _, _ := m.Get("k"); v != "v" {
		t.Errorf("value = %q", v)
	}
}
