// Package parser extracts link, import, and image references from Markdown
// and MDX content.
package parser

import (
	"regexp"
	"strings"

	"github.com/starford/doclint/internal/models"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	jsxLinkRe      = regexp.MustCompile(`<Link\s+(?:[^>]*\s+)?href=["']([^"']+)["']`)
	importRe       = regexp.MustCompile(`import\s+.*?\s+from\s+["']([^"']+)["']`)
	markdownImgRe  = regexp.MustCompile(`!\[.*?\]\(([^)]+)\)`)
	htmlImgRe      = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
)

// IsExternal reports whether target points outside the docs tree or only
// at an anchor on the current page.
func IsExternal(target string) bool {
	return strings.HasPrefix(target, "http") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#")
}

// StripFragment removes a trailing #fragment.
func StripFragment(target string) string {
	if i := strings.Index(target, "#"); i >= 0 {
		return target[:i]
	}
	return target
}

// Links returns the Markdown links followed by the JSX <Link href> links
// found in content. External targets, anchors, and targets that are empty
// once the fragment is removed are dropped.
func Links(source, content string) []models.Link {
	lines := newLineIndex(content)
	var out []models.Link
	out = appendMatches(out, lines, source, content, markdownLinkRe, 2, models.LinkMarkdown)
	out = appendMatches(out, lines, source, content, jsxLinkRe, 1, models.LinkJSX)
	return out
}

// Imports returns the module imports of content that name another file in
// the tree (targets starting with "/", "./" or "../"). Package imports such
// as "react" are not document references.
func Imports(source, content string) []models.Link {
	lines := newLineIndex(content)
	all := appendMatches(nil, lines, source, content, importRe, 1, models.LinkImport)
	out := all[:0]
	for _, l := range all {
		if isPathLike(l.Target) {
			out = append(out, l)
		}
	}
	return out
}

// References returns every reference that can make another document
// reachable: Links followed by Imports.
func References(source, content string) []models.Link {
	return append(Links(source, content), Imports(source, content)...)
}

// Images returns the root-relative image references in content, scanning
// line by line. Markdown image targets are cut at the first space so that
// a trailing title is ignored.
func Images(source, content string) []models.Link {
	var out []models.Link
	for i, line := range strings.Split(content, "\n") {
		for _, m := range markdownImgRe.FindAllStringSubmatch(line, -1) {
			target := strings.SplitN(m[1], " ", 2)[0]
			if strings.HasPrefix(target, "/") {
				out = append(out, models.Link{Target: target, Source: source, Line: i + 1, Kind: models.LinkImage})
			}
		}
		for _, m := range htmlImgRe.FindAllStringSubmatch(line, -1) {
			if strings.HasPrefix(m[1], "/") {
				out = append(out, models.Link{Target: m[1], Source: source, Line: i + 1, Kind: models.LinkImage})
			}
		}
	}
	return out
}

func appendMatches(out []models.Link, lines lineIndex, source, content string, re *regexp.Regexp, group int, kind models.LinkKind) []models.Link {
	for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
		raw := content[m[2*group]:m[2*group+1]]
		if IsExternal(raw) {
			continue
		}
		target := StripFragment(raw)
		if target == "" {
			continue
		}
		out = append(out, models.Link{
			Target: target,
			Source: source,
			Line:   lines.line(m[0]),
			Kind:   kind,
		})
	}
	return out
}

func isPathLike(target string) bool {
	return strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "./") ||
		strings.HasPrefix(target, "../")
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(content string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) line(offset int) int {
	lo, hi := 0, len(l)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
