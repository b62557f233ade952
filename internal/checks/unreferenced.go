package checks

import (
	"context"
	"fmt"
)

// UnreferencedReport lists documentation files that nothing reaches.
type UnreferencedReport struct {
	Total      int // documentation files in the tree
	Referenced int // documents in the closure
	Files      []string
}

// ExitCode is always 0: unreferenced files are a warning.
func (r *UnreferencedReport) ExitCode() int {
	return 0
}

// Unreferenced returns the documentation files outside the closure.
func (s *Service) Unreferenced(ctx context.Context) (*UnreferencedReport, error) {
	set, err := s.reachable(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.Inventory()
	if err != nil {
		return nil, fmt.Errorf("checks: unreferenced: %w", err)
	}

	report := &UnreferencedReport{Total: len(files), Referenced: len(set)}
	for _, f := range files {
		if !set.Has(f) {
			report.Files = append(report.Files, f)
		}
	}
	return report, nil
}
