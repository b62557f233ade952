package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/jsondoc"
	"github.com/starford/doclint/internal/storage"
)

// NavOptions configures GenerateNavigation.
type NavOptions struct {
	NavFile    string // navigation manifest, relative to the root
	Tab        string // name of the tab whose groups are rebuilt
	IntroGroup string
	IntroPage  string
	SpecDir    string // directory holding the spec files, relative to the root
	Suffix     string // spec file name suffix
}

// NavGroup is one group of the API tab: either a list of pages or a single
// OpenAPI spec.
type NavGroup struct {
	Group   string   `json:"group"`
	Pages   []string `json:"pages,omitempty"`
	OpenAPI string   `json:"openapi,omitempty"`
}

// Category is a named set of services, listed for review after a run.
type Category struct {
	Name     string
	Services []string // spec file stems
}

// ServiceCategories groups the known services.
var ServiceCategories = []Category{
	{"Infrastructure", []string{"connectors", "resource", "sidecar", "satellite"}},
	{"Identity & Access", []string{"user", "group", "spaces", "permissions"}},
	{"Security & Governance", []string{"policies", "policy_data_loaders", "sessions", "logs", "monitors"}},
	{"Data Management", []string{"inventory", "trackers", "graph"}},
	{"Integrations", []string{
		"integration_bi",
		"integration_cloud",
		"integration_data_catalog",
		"integration_log",
		"integration_mdm",
		"integration_mfa",
	}},
	{"Automation", []string{"workflow", "scenario_monitoring"}},
}

// CategoryMatch lists the services of a category that have a spec file.
type CategoryMatch struct {
	Name     string
	Services []string // friendly names
}

// NavSummary describes a navigation rebuild.
type NavSummary struct {
	Specs      int
	Groups     int
	Categories []CategoryMatch
}

// ServiceName turns a spec file name such as "policy_data_loaders_openapi.json"
// into "Policy Data Loaders".
func ServiceName(file, suffix string) string {
	stem := strings.TrimSuffix(path.Base(file), suffix)
	words := strings.Split(stem, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// BuildGroups returns the intro group followed by one group per spec file.
func BuildGroups(files []string, opts NavOptions) []NavGroup {
	groups := []NavGroup{{Group: opts.IntroGroup, Pages: []string{opts.IntroPage}}}
	for _, f := range files {
		groups = append(groups, NavGroup{
			Group:   ServiceName(f, opts.Suffix),
			OpenAPI: path.Join(opts.SpecDir, path.Base(f)),
		})
	}
	return groups
}

// Categorize matches spec files against ServiceCategories. Categories
// without any spec file are omitted.
func Categorize(files []string, suffix string) []CategoryMatch {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[path.Base(f)] = true
	}
	var out []CategoryMatch
	for _, c := range ServiceCategories {
		var found []string
		for _, s := range c.Services {
			if present[s+suffix] {
				found = append(found, ServiceName(s+suffix, suffix))
			}
		}
		if len(found) > 0 {
			out = append(out, CategoryMatch{Name: c.Name, Services: found})
		}
	}
	return out
}

// UpdateNavigation replaces the groups of the navigation tab named tab
// and removes its "openapi" key. Everything else in data keeps its order
// and content. It returns apperr.ErrNavTabNotFound when no such tab
// exists under navigation.tabs.
func UpdateNavigation(data []byte, tab string, groups []NavGroup) ([]byte, error) {
	root, err := jsondoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: navigation: %w", err)
	}
	navigation, ok := root.Object("navigation")
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrNavTabNotFound, tab)
	}
	tabs, ok := navigation.Array("tabs")
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrNavTabNotFound, tab)
	}

	found := false
	for i, raw := range tabs {
		t, err := jsondoc.Parse(raw)
		if err != nil {
			continue
		}
		if name, _ := t.String("tab"); name != tab {
			continue
		}
		if err := t.Set("groups", groups); err != nil {
			return nil, err
		}
		t.Delete("openapi")
		encoded, err := t.MarshalJSON()
		if err != nil {
			return nil, err
		}
		tabs[i] = encoded
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", apperr.ErrNavTabNotFound, tab)
	}

	if err := navigation.Set("tabs", tabs); err != nil {
		return nil, err
	}
	if err := root.Set("navigation", navigation); err != nil {
		return nil, err
	}
	return jsondoc.Encode(root)
}

// GenerateNavigation rebuilds the API tab of the navigation manifest from
// the spec files in opts.SpecDir.
func GenerateNavigation(ctx context.Context, store storage.Provider, opts NavOptions) (*NavSummary, error) {
	metas, err := store.List(opts.SpecDir, storage.Filter{Suffixes: []string{opts.Suffix}, Shallow: true})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("openapi: list %s: %w", opts.SpecDir, err)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("%w in %s", apperr.ErrNoSpecs, opts.SpecDir)
	}
	files := make([]string, len(metas))
	for i, m := range metas {
		files[i] = m.Path
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := BuildGroups(files, opts)

	data, err := store.Read(opts.NavFile)
	if err != nil {
		return nil, fmt.Errorf("openapi: navigation: %w", err)
	}
	out, err := UpdateNavigation(data, opts.Tab, groups)
	if err != nil {
		return nil, err
	}
	if err := store.Write(opts.NavFile, out); err != nil {
		return nil, fmt.Errorf("openapi: navigation: %w", err)
	}

	return &NavSummary{
		Specs:      len(files),
		Groups:     len(groups),
		Categories: Categorize(files, opts.Suffix),
	}, nil
}
