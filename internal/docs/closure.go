package docs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/doclint/internal/parser"
	"github.com/starford/doclint/internal/storage"
)

// Closure computes the set of documents reachable from a set of seeds by
// following Markdown links, JSX links, and path imports.
type Closure struct {
	store  storage.Provider
	oracle *Oracle
	logger *slog.Logger
}

// NewClosure creates a Closure reading documents from store.
func NewClosure(store storage.Provider, oracle *Oracle, logger *slog.Logger) *Closure {
	return &Closure{store: store, oracle: oracle, logger: logger}
}

// Reachable returns the least set containing the document paths of seeds
// that is closed under Expand. Seeds are canonicalised and mapped to their
// document paths first. Paths that do not exist stay in the set but
// contribute no further references.
func (c *Closure) Reachable(ctx context.Context, seeds []string) (Set, error) {
	set := NewSet()
	var frontier []string
	for _, s := range seeds {
		p := c.oracle.DocPath(Canonical(s))
		if set.Add(p) {
			frontier = append(frontier, p)
		}
	}

	for pass := 1; len(frontier) > 0; pass++ {
		added, err := c.Expand(ctx, set, frontier)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("closure: pass complete",
			slog.Int("pass", pass),
			slog.Int("scanned", len(frontier)),
			slog.Int("added", len(added)),
			slog.Int("total", len(set)))
		frontier = added
	}
	return set, nil
}

// Expand reads every existing document among paths, resolves its
// references relative to it, and adds their document paths to set.
// It returns the paths that were not in set before, in discovery order.
func (c *Closure) Expand(ctx context.Context, set Set, paths []string) ([]string, error) {
	var added []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.oracle.IsDoc(p) {
			continue
		}
		data, err := c.store.Read(p)
		if err != nil {
			return nil, fmt.Errorf("closure: %w", err)
		}
		for _, ref := range parser.References(p, string(data)) {
			target := c.oracle.DocPath(Resolve(ref.Target, p))
			if set.Add(target) {
				added = append(added, target)
			}
		}
	}
	return added, nil
}

// Step runs one full pass over every member of set and returns what it
// added. A set returned by Reachable is a fixed point: Step adds nothing.
func (c *Closure) Step(ctx context.Context, set Set) ([]string, error) {
	return c.Expand(ctx, set, set.Sorted())
}
