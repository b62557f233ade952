// Package models defines the domain types for doclint.
package models

import "time"

// LinkKind names the syntax a reference was extracted from.
type LinkKind string

const (
	LinkMarkdown LinkKind = "markdown"
	LinkJSX      LinkKind = "jsx"
	LinkImport   LinkKind = "import"
	LinkImage    LinkKind = "image"
	LinkNav      LinkKind = "nav"
)

// Link is a reference found in a document or in the navigation manifest.
// Target is the raw value with any #fragment removed.
type Link struct {
	Target  string   `json:"target"`
	Source  string   `json:"source"`
	Line    int      `json:"line,omitempty"`
	Kind    LinkKind `json:"kind"`
	Pointer string   `json:"pointer,omitempty"` // JSON location for nav links
}

// FileMeta is a lightweight representation returned by list operations.
type FileMeta struct {
	Path      string    `json:"path"` // slash-separated, relative to the docs root
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeadLink is a reference whose resolved path matches nothing on disk.
type DeadLink struct {
	Path     string `json:"path"`
	Location string `json:"location"`
	Source   string `json:"source"`
}

// MissingAsset is an image reference that exists under none of the asset
// lookup locations.
type MissingAsset struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	AssetPath string `json:"asset_path"`
}
