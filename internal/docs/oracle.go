package docs

import (
	"path"
	"strings"

	"github.com/starford/doclint/internal/storage"
)

// Oracle answers whether a canonical path corresponds to a document,
// trying the documentation extensions and directory index files in a
// fixed preference order.
type Oracle struct {
	store      storage.Provider
	extensions []string
	indexName  string
}

// NewOracle creates an Oracle. extensions are tried in order (".mdx"
// before ".md" by default); indexName is the base name of directory index
// documents.
func NewOracle(store storage.Provider, extensions []string, indexName string) *Oracle {
	return &Oracle{store: store, extensions: extensions, indexName: indexName}
}

// Exists reports whether p names an existing file or directory, or
// whether one of its document candidates exists: p+ext for each
// extension, then p/index+ext for each extension.
func (o *Oracle) Exists(p string) bool {
	if o.store.Exists(p) {
		return true
	}
	for _, c := range o.candidates(p) {
		if o.store.Exists(c) {
			return true
		}
	}
	return false
}

// DocPath returns the canonical document path for p. A path that already
// carries a documentation extension is returned unchanged. Otherwise the
// first existing document candidate wins, then an existing file at p
// itself; with no match, p gets the preferred extension appended.
func (o *Oracle) DocPath(p string) string {
	if o.HasDocExt(p) {
		return p
	}
	for _, c := range o.candidates(p) {
		if o.store.IsFile(c) {
			return c
		}
	}
	if o.store.IsFile(p) {
		return p
	}
	if p == "." {
		return o.indexName + o.extensions[0]
	}
	return p + o.extensions[0]
}

// IsDoc reports whether p is an existing regular file with a
// documentation extension.
func (o *Oracle) IsDoc(p string) bool {
	return o.HasDocExt(p) && o.store.IsFile(p)
}

// HasDocExt reports whether p ends in one of the documentation extensions.
func (o *Oracle) HasDocExt(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range o.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (o *Oracle) candidates(p string) []string {
	out := make([]string, 0, 2*len(o.extensions))
	if p != "." && p != "" {
		for _, ext := range o.extensions {
			out = append(out, p+ext)
		}
	}
	for _, ext := range o.extensions {
		out = append(out, path.Join(p, o.indexName+ext))
	}
	return out
}
