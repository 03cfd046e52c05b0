package preset

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "presets.db"))

	if s.Contains("/shelf/obj0/wear") {
		t.Error("fresh store claims to contain a preset")
	}
	if _, ok := s.Get("/shelf/obj0/wear"); ok {
		t.Error("fresh store returned a preset")
	}

	blob := []byte(`{"ints":[2],"floats":[0.4]}`)
	if err := s.Set("/shelf/obj0/wear", blob); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := s.Get("/shelf/obj0/wear")
	if !ok || !bytes.Equal(got, blob) {
		t.Fatalf("get = %q/%v", got, ok)
	}

	// Overwrites replace.
	blob2 := []byte(`{"ints":[7]}`)
	if err := s.Set("/shelf/obj0/wear", blob2); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := s.Get("/shelf/obj0/wear"); !bytes.Equal(got, blob2) {
		t.Errorf("after overwrite = %q", got)
	}

	if err := s.Delete("/shelf/obj0/wear"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Contains("/shelf/obj0/wear") {
		t.Error("preset survives delete")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "presets.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("/a", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("/b", []byte("two")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2 := openStore(t, dbPath)
	if got, ok := s2.Get("/a"); !ok || string(got) != "one" {
		t.Errorf("reopened get = %q/%v", got, ok)
	}
	paths, err := s2.Paths()
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/a" || paths[1] != "/b" {
		t.Errorf("paths = %v", paths)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("   "); err == nil {
		t.Error("blank path accepted")
	}
}

func TestMemoryStoresCopies(t *testing.T) {
	m := NewMemory()
	blob := []byte("abc")
	if err := m.Set("/x", blob); err != nil {
		t.Fatalf("set: %v", err)
	}
	blob[0] = 'z'

	got, ok := m.Get("/x")
	if !ok || string(got) != "abc" {
		t.Errorf("get = %q/%v, want the stored copy", got, ok)
	}

	if err := m.Delete("/x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if m.Contains("/x") {
		t.Error("preset survives delete")
	}
}
