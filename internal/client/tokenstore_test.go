package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileTokenStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileTokenStore(path)

	token, email, err := store.Load()
	if err != nil || token != "" || email != "" {
		t.Fatalf("empty store load = (%q, %q, %v)", token, email, err)
	}

	if err := store.Save("tok-1", "a@b.com"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, email, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-1" || email != "a@b.com" {
		t.Fatalf("loaded = (%q, %q)", token, email)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file must be removed after clear")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear must be idempotent: %v", err)
	}
}

func TestFileTokenStore_CorruptFileMeansNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := NewFileTokenStore(path)
	token, email, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt state must not be fatal: %v", err)
	}
	if token != "" || email != "" {
		t.Fatalf("corrupt state must read as no session, got (%q, %q)", token, email)
	}
}

func TestFileTokenStore_UnreadablePathMeansNoSession(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "missing", "deep", "session.json"))
	token, email, err := store.Load()
	if err != nil || token != "" || email != "" {
		t.Fatalf("missing path load = (%q, %q, %v)", token, email, err)
	}
}
