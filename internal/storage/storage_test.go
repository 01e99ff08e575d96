package storage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "todo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty db path")
	}
}

func TestStoreLoadMissingKey(t *testing.T) {
	s := openTemp(t)
	v, found, err := s.Load("todos")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || v != nil {
		t.Fatalf("expected absent key, got found=%v value=%q", found, v)
	}
}

func TestStoreSaveOverwrite(t *testing.T) {
	s := openTemp(t)
	if err := s.Save("lightTheme", []byte("true")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("lightTheme", []byte("false")); err != nil {
		t.Fatalf("save again: %v", err)
	}
	v, found, err := s.Load("lightTheme")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(v) != "false" {
		t.Fatalf("expected overwritten value, got %q", v)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "lightTheme" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	payload := []byte(`[{"title":"Buy milk","id":1,"done":false}]`)
	if err := s.Save("todos", payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, found, err := s.Load("todos")
	if err != nil || !found {
		t.Fatalf("load after reopen: found=%v err=%v", found, err)
	}
	if !bytes.Equal(v, payload) {
		t.Fatalf("got %q, want %q", v, payload)
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("file:already.db"); got != "file:already.db" {
		t.Fatalf("file: DSN should pass through, got %q", got)
	}
	got := sqliteDSN("todo.db")
	if !strings.HasPrefix(got, "file://") && !strings.HasPrefix(got, "file:/") {
		t.Fatalf("expected file URL, got %q", got)
	}
	if !strings.Contains(got, "mode=rwc") {
		t.Fatalf("expected mode=rwc in %q", got)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("true")
	if err := m.Save("k", buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[0] = 'X'

	v, found, _ := m.Load("k")
	if !found || string(v) != "true" {
		t.Fatalf("stored value leaked caller mutation: %q", v)
	}
	v[0] = 'Y'
	again, _, _ := m.Load("k")
	if string(again) != "true" {
		t.Fatalf("loaded value aliases storage: %q", again)
	}
	if _, found, _ := m.Load("missing"); found {
		t.Fatal("missing key reported as found")
	}
}
