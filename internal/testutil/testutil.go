// Package testutil provides shared test helpers for setting up documentation
// trees.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/doclint/internal/storage"
)

// TestTree creates a temporary documentation tree holding files (path →
// content) and returns its root with a storage provider over it.
func TestTree(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	for p, body := range files {
		if err := store.Write(p, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	return root, store
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
