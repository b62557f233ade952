// Package storage defines the documentation tree file-system abstraction.
package storage

import "github.com/starford/doclint/internal/models"

// Filter selects which files List returns.
type Filter struct {
	// Suffixes are matched case-insensitively against file names.
	// An empty list matches every file.
	Suffixes []string
	// SkipDirs are directory names pruned from the walk.
	SkipDirs []string
	// SkipHidden prunes directories whose name starts with ".".
	SkipHidden bool
	// Shallow lists only the direct children of dir.
	Shallow bool
}

// Provider is the interface for documentation tree file operations.
// All paths are slash-separated and relative to the tree root.
type Provider interface {
	// List returns metadata for every file under dir accepted by filter,
	// in lexical order.
	List(dir string, filter Filter) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Exists reports whether path names a file or directory.
	Exists(path string) bool
	// IsFile reports whether path names a regular file.
	IsFile(path string) bool
}
