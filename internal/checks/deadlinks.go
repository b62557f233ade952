package checks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/doclint/internal/docs"
	"github.com/starford/doclint/internal/models"
	"github.com/starford/doclint/internal/nav"
	"github.com/starford/doclint/internal/parser"
)

// DeadLinkReport is the result of a dead-link scan.
type DeadLinkReport struct {
	Scanned int // documentation files read
	Checked int // internal references resolved
	Dead    []models.DeadLink
}

// ExitCode returns 1 when any dead link was found.
func (r *DeadLinkReport) ExitCode() int {
	if len(r.Dead) > 0 {
		return 1
	}
	return 0
}

// DeadLinks checks every navigation entry and every Markdown or JSX link
// of the non-excluded documentation files against the tree.
func (s *Service) DeadLinks(ctx context.Context) (*DeadLinkReport, error) {
	report := &DeadLinkReport{}

	links := s.navLinks()

	files, err := s.Inventory()
	if err != nil {
		return nil, fmt.Errorf("checks: dead links: %w", err)
	}
	for _, f := range files {
		if s.excluded(f) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.store.Read(f)
		if err != nil {
			return nil, fmt.Errorf("checks: dead links: %w", err)
		}
		links = append(links, parser.Links(f, string(data))...)
		report.Scanned++
	}

	for _, l := range links {
		if parser.IsExternal(l.Target) {
			continue
		}
		resolved := docs.Resolve(l.Target, l.Source)
		if l.Kind == models.LinkNav {
			resolved = docs.Canonical(l.Target)
		}
		report.Checked++
		if s.oracle.Exists(resolved) {
			continue
		}
		report.Dead = append(report.Dead, models.DeadLink{
			Path:     resolved,
			Location: location(l),
			Source:   l.Target,
		})
	}

	s.logger.Debug("dead links: scan complete",
		slog.Int("files", report.Scanned),
		slog.Int("links", report.Checked),
		slog.Int("dead", len(report.Dead)))
	return report, nil
}

// navLinks returns the manifest's page entries. An unreadable or malformed
// manifest contributes no links.
func (s *Service) navLinks() []models.Link {
	data, err := s.store.Read(s.opts.NavFile)
	if err != nil {
		s.logger.Warn("navigation manifest unreadable",
			slog.String("file", s.opts.NavFile),
			slog.String("error", err.Error()))
		return nil
	}
	links, err := nav.Links(s.opts.NavFile, data)
	if err != nil {
		s.logger.Warn("navigation manifest invalid",
			slog.String("file", s.opts.NavFile),
			slog.String("error", err.Error()))
		return nil
	}
	return links
}

func location(l models.Link) string {
	switch l.Kind {
	case models.LinkNav:
		return fmt.Sprintf("%s: %s", l.Source, l.Pointer)
	case models.LinkJSX:
		return fmt.Sprintf("JSX Link in %s:%d", l.Source, l.Line)
	default:
		return fmt.Sprintf("markdown link in %s:%d", l.Source, l.Line)
	}
}
