package patterns

import (
	"errors"
	"slices"
	"testing"

	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/models"
	"github.com/starford/streammark/internal/testutil"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(kv.NewMemory(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.List(); !slices.Equal(got, models.DefaultMemoPatterns) {
		t.Errorf("List = %v, want defaults", got)
	}
}

func TestLoad_Saved(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(kv.KeyPatterns, `["intro","outro"]`)
	s, err := Load(m, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.List(); !slices.Equal(got, []string{"intro", "outro"}) {
		t.Errorf("List = %v", got)
	}
}

func TestLoad_CorruptJSON(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(kv.KeyPatterns, `["unterminated`)
	if _, err := Load(m, nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAdd_TrimsAndPersists(t *testing.T) {
	m := kv.NewMemory()
	calls := 0
	s, _ := Load(m, func() { calls++ })

	added, err := s.Add("  ハイライト  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !added {
		t.Fatal("expected added = true")
	}
	list := s.List()
	if list[len(list)-1] != "ハイライト" {
		t.Errorf("last = %q, want trimmed label", list[len(list)-1])
	}
	raw, _, _ := m.Get(kv.KeyPatterns)
	if raw != `["チャプター1","面白かったところ","重要なポイント","質問","ハイライト"]` {
		t.Errorf("persisted = %s", raw)
	}
	if calls != 1 {
		t.Errorf("onChange calls = %d, want 1", calls)
	}
}

func TestAdd_RejectsEmptyAndDuplicate(t *testing.T) {
	calls := 0
	s, _ := Load(kv.NewMemory(), func() { calls++ })
	before := s.List()

	for _, p := range []string{"", "   ", "質問", " 質問 ", "\t質問\n"} {
		added, err := s.Add(p)
		if err != nil {
			t.Fatalf("Add(%q): %v", p, err)
		}
		if added {
			t.Errorf("Add(%q) should be a no-op", p)
		}
	}
	if !slices.Equal(s.List(), before) {
		t.Errorf("List changed: %v", s.List())
	}
	if calls != 0 {
		t.Errorf("onChange calls = %d, want 0", calls)
	}
}

func TestAdd_CaseSensitive(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(kv.KeyPatterns, `["Intro"]`)
	s, _ := Load(m, nil)
	added, _ := s.Add("intro")
	if !added {
		t.Error("differently-cased label should be accepted")
	}
}

func TestRemove(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(kv.KeyPatterns, `["a","b","c"]`)
	calls := 0
	s, _ := Load(m, func() { calls++ })

	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := s.List(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("List = %v", got)
	}
	raw, _, _ := m.Get(kv.KeyPatterns)
	if raw != `["a","c"]` {
		t.Errorf("persisted = %s", raw)
	}
	if calls != 1 {
		t.Errorf("onChange calls = %d", calls)
	}
}

func TestRemove_OutOfRange(t *testing.T) {
	s, _ := Load(kv.NewMemory(), nil)
	for _, i := range []int{-1, 4, 100} {
		if err := s.Remove(i); err != nil {
			t.Errorf("Remove(%d) = %v, want nil", i, err)
		}
	}
	if len(s.List()) != len(models.DefaultMemoPatterns) {
		t.Errorf("List changed: %v", s.List())
	}
}

func TestRemoveAll_PersistsEmptyList(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(kv.KeyPatterns, `["only"]`)
	s, _ := Load(m, nil)
	_ = s.Remove(0)

	reloaded, err := Load(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.List(); len(got) != 0 {
		t.Errorf("empty list should not fall back to defaults, got %v", got)
	}
}

func TestFailedWriteRollsBack(t *testing.T) {
	m := kv.NewMemory()
	s, _ := Load(m, nil)
	m.FailWrites = true

	if _, err := s.Add("new"); !errors.Is(err, kv.ErrWriteFailed) {
		t.Fatalf("Add err = %v", err)
	}
	if err := s.Remove(0); !errors.Is(err, kv.ErrWriteFailed) {
		t.Fatalf("Remove err = %v", err)
	}
	if !slices.Equal(s.List(), models.DefaultMemoPatterns) {
		t.Errorf("List = %v, want unchanged", s.List())
	}
}

func TestReload(t *testing.T) {
	m := kv.NewMemory()
	s, _ := Load(m, nil)
	_ = m.Set(kv.KeyPatterns, `["external"]`)
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := s.List(); !slices.Equal(got, []string{"external"}) {
		t.Errorf("List = %v", got)
	}
}

func TestMutationsKeepChangesFromOtherProcess(t *testing.T) {
	serverKV := testutil.TestKV(t)
	cliKV, err := kv.Open(serverKV.Path())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cliKV.Close() })

	server, _ := Load(serverKV, nil)
	cli, _ := Load(cliKV, nil)

	if added, err := cli.Add("from-cli"); err != nil || !added {
		t.Fatalf("cli Add = (%v, %v)", added, err)
	}
	if added, err := server.Add("from-server"); err != nil || !added {
		t.Fatalf("server Add = (%v, %v)", added, err)
	}
	want := append(slices.Clone(models.DefaultMemoPatterns), "from-cli", "from-server")
	if got := server.List(); !slices.Equal(got, want) {
		t.Errorf("server List = %v, want %v", got, want)
	}

	// A stale duplicate check must see the stored list.
	if added, _ := cli.Add("from-server"); added {
		t.Error("duplicate of another process's pattern was added")
	}

	// Index positions refer to the stored list.
	if err := cli.Remove(len(want) - 1); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := serverKV.Get(kv.KeyPatterns)
	if raw != `["チャプター1","面白かったところ","重要なポイント","質問","from-cli"]` {
		t.Errorf("persisted = %s", raw)
	}
}
