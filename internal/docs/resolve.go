// Package docs resolves references between documentation files and
// computes which files are reachable from the site navigation.
package docs

import (
	"path"
	"strings"
)

// Resolve turns a link target found in sourceFile into a canonical path
// relative to the docs root. Root-relative targets ("/x") lose their
// leading slash, "./" and "../" targets are joined to the directory of
// sourceFile, and any other target is taken as already root-relative.
// The result is lexically cleaned; the file system is never consulted.
func Resolve(target, sourceFile string) string {
	switch {
	case strings.HasPrefix(target, "/"):
		return Canonical(target)
	case strings.HasPrefix(target, "./"), strings.HasPrefix(target, "../"):
		return path.Join(path.Dir(sourceFile), target)
	default:
		return Canonical(target)
	}
}

// Canonical returns the root-relative form of a navigation entry or
// root-relative link: no leading slash, cleaned, "." for the root itself.
func Canonical(p string) string {
	return path.Clean(strings.TrimLeft(p, "/"))
}
