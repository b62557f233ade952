// Package nav reads the site navigation manifest (docs.json).
package nav

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/doclint/internal/models"
)

// Manifest is the navigation part of docs.json. Tabs are read from the top
// level or from "navigation.tabs".
type Manifest struct {
	Tabs []Tab
}

// Tab is one navigation tab.
type Tab struct {
	Tab    string  `json:"tab"`
	URL    string  `json:"url"`
	Groups []Group `json:"groups"`
}

// Group is a titled list of pages. Pages may nest further groups.
type Group struct {
	Group string `json:"group"`
	Pages []Page `json:"pages"`
}

// Page is either a page path or a nested group.
type Page struct {
	Path  string
	Group *Group
}

// UnmarshalJSON accepts a string or a group object. Other values are
// ignored.
func (p *Page) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Path = s
		return nil
	}
	var g Group
	if err := json.Unmarshal(data, &g); err == nil {
		p.Group = &g
	}
	return nil
}

type document struct {
	Tabs       []Tab `json:"tabs"`
	Navigation *struct {
		Tabs []Tab `json:"tabs"`
	} `json:"navigation"`
}

// Parse decodes a docs.json document.
func Parse(data []byte) (*Manifest, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("nav: parse: %w", err)
	}
	m := &Manifest{Tabs: doc.Tabs}
	if doc.Navigation != nil {
		m.Tabs = append(m.Tabs, doc.Navigation.Tabs...)
	}
	return m, nil
}

// Seeds returns every internal manifest entry in document order: tab URLs
// followed by the tab's group pages, nested groups included. Entries
// starting with "http" are skipped.
func (m *Manifest) Seeds() []string {
	var out []string
	for _, tab := range m.Tabs {
		if tab.URL != "" && !strings.HasPrefix(tab.URL, "http") {
			out = append(out, tab.URL)
		}
		for _, g := range tab.Groups {
			out = g.appendPages(out)
		}
	}
	return out
}

func (g Group) appendPages(out []string) []string {
	for _, p := range g.Pages {
		switch {
		case p.Group != nil:
			out = p.Group.appendPages(out)
		case p.Path != "" && !strings.HasPrefix(p.Path, "http"):
			out = append(out, p.Path)
		}
	}
	return out
}

// Links walks the whole docs.json document and returns every page entry
// that should name a document: each string inside a "pages" array that
// does not end in ".json", and each "url" string starting with "docs/".
// Pointer records where the entry was found, for example
// "navigation.tabs[0].groups[1].pages". Object keys are visited in sorted
// order.
func Links(source string, data []byte) ([]models.Link, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("nav: parse: %w", err)
	}
	var out []models.Link
	walk(root, "", func(pointer, target string) {
		out = append(out, models.Link{
			Target:  target,
			Source:  source,
			Kind:    models.LinkNav,
			Pointer: pointer,
		})
	})
	return out, nil
}

func walk(node any, pointer string, emit func(pointer, target string)) {
	switch v := node.(type) {
	case []any:
		for i, item := range v {
			walk(item, pointer+"["+strconv.Itoa(i)+"]", emit)
		}
	case map[string]any:
		if pages, ok := v["pages"].([]any); ok {
			for _, p := range pages {
				if s, ok := p.(string); ok && !strings.HasSuffix(s, ".json") {
					emit(join(pointer, "pages"), s)
				}
			}
		}
		if u, ok := v["url"].(string); ok && strings.HasPrefix(u, "docs/") {
			emit(join(pointer, "url"), u)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(v[k], join(pointer, k), emit)
		}
	}
}

func join(pointer, key string) string {
	if pointer == "" {
		return key
	}
	return pointer + "." + key
}
