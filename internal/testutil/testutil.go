// Package testutil provides shared test helpers for vaults and history databases.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/notemover/internal/history"
	"github.com/starford/notemover/internal/storage"
)

// TestHistory creates a temporary history database that is automatically cleaned up.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notemover-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault. Each entry of files is a
// path=content pair; a path ending in "/" creates a folder instead.
func TestVault(t *testing.T, files ...string) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		path, content, _ := strings.Cut(f, "=")
		abs := filepath.Join(store.Root(), filepath.FromSlash(path))
		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return store
}
