// Package checks implements the documentation reports: dead links, missing
// assets, and referenced or unreferenced files.
package checks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/doclint/internal/docs"
	"github.com/starford/doclint/internal/nav"
	"github.com/starford/doclint/internal/storage"
)

// Options configures a Service.
type Options struct {
	// NavFile is the navigation manifest path relative to the root.
	NavFile string
	// SpecialFiles are always treated as referenced.
	SpecialFiles []string
	// AssetDirs are the directories searched for root-relative images.
	AssetDirs []string
	// Exclude holds path substrings of files skipped by the dead-link scan.
	Exclude []string
	// Inventory selects the documentation files of the tree.
	Inventory storage.Filter
}

// Service runs reports over one documentation tree. Reports are returned
// as values; a Service holds no per-run state.
type Service struct {
	store   storage.Provider
	oracle  *docs.Oracle
	closure *docs.Closure
	opts    Options
	logger  *slog.Logger
}

// NewService creates a Service.
func NewService(store storage.Provider, oracle *docs.Oracle, closure *docs.Closure, opts Options, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		oracle:  oracle,
		closure: closure,
		opts:    opts,
		logger:  logger,
	}
}

// Inventory returns every documentation file in the tree, in lexical order.
func (s *Service) Inventory() ([]string, error) {
	metas, err := s.store.List("", s.opts.Inventory)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Path
	}
	return out, nil
}

// Referenced returns the documents reachable from the navigation manifest
// and the special files, sorted.
func (s *Service) Referenced(ctx context.Context) ([]string, error) {
	set, err := s.reachable(ctx)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

func (s *Service) reachable(ctx context.Context) (docs.Set, error) {
	seeds := s.navSeeds()
	seeds = append(seeds, s.opts.SpecialFiles...)
	set, err := s.closure.Reachable(ctx, seeds)
	if err != nil {
		return nil, fmt.Errorf("checks: reachability: %w", err)
	}
	return set, nil
}

// navSeeds returns the manifest entries. An unreadable or malformed
// manifest contributes no seeds.
func (s *Service) navSeeds() []string {
	data, err := s.store.Read(s.opts.NavFile)
	if err != nil {
		s.logger.Warn("navigation manifest unreadable",
			slog.String("file", s.opts.NavFile),
			slog.String("error", err.Error()))
		return nil
	}
	m, err := nav.Parse(data)
	if err != nil {
		s.logger.Warn("navigation manifest invalid",
			slog.String("file", s.opts.NavFile),
			slog.String("error", err.Error()))
		return nil
	}
	return m.Seeds()
}

func (s *Service) excluded(p string) bool {
	for _, sub := range s.opts.Exclude {
		if sub != "" && strings.Contains(p, sub) {
			return true
		}
	}
	return false
}
