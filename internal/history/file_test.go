package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	seen, err := s.Contains(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("Contains() on empty store = true")
	}

	if err := s.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "p2"); err != nil {
		t.Fatal(err)
	}

	seen, _ = s.Contains(ctx, "p1")
	if !seen {
		t.Error("Contains(p1) = false after Add")
	}
	if n, _ := s.Len(ctx); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}

	// A fresh store over the same file sees the recorded identifiers.
	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	seen, _ = reloaded.Contains(ctx, "p2")
	if !seen {
		t.Error("Contains(p2) = false after reload")
	}
}

func TestFileStoreAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Add(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("Len() = %d after duplicate Add, want 1", n)
	}

	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("duplicate Add rewrote the file")
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path); err == nil {
		t.Error("expected error for corrupt history file")
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file not created: %v", err)
	}
}
