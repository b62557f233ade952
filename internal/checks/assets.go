package checks

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/starford/doclint/internal/models"
	"github.com/starford/doclint/internal/parser"
)

// AssetReport is the result of an asset scan.
type AssetReport struct {
	Scanned int // documentation files read
	Checked int // image references checked
	Missing []models.MissingAsset
}

// ExitCode returns 1 when any referenced asset is missing.
func (r *AssetReport) ExitCode() int {
	if len(r.Missing) > 0 {
		return 1
	}
	return 0
}

// Assets checks every root-relative image reference of every
// documentation file.
func (s *Service) Assets(ctx context.Context) (*AssetReport, error) {
	report := &AssetReport{}

	files, err := s.Inventory()
	if err != nil {
		return nil, fmt.Errorf("checks: assets: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.store.Read(f)
		if err != nil {
			return nil, fmt.Errorf("checks: assets: %w", err)
		}
		report.Scanned++
		for _, img := range parser.Images(f, string(data)) {
			report.Checked++
			if s.assetExists(img.Target) {
				continue
			}
			report.Missing = append(report.Missing, models.MissingAsset{
				File:      f,
				Line:      img.Line,
				AssetPath: img.Target,
			})
		}
	}
	return report, nil
}

// AssetCandidates returns the root-relative paths searched for a
// root-relative image target: the path itself, then the path under each
// asset directory.
func (s *Service) AssetCandidates(target string) []string {
	rel := strings.TrimLeft(target, "/")
	out := []string{rel}
	for _, dir := range s.opts.AssetDirs {
		out = append(out, path.Join(dir, rel))
	}
	return out
}

func (s *Service) assetExists(target string) bool {
	for _, c := range s.AssetCandidates(target) {
		if s.store.Exists(c) {
			return true
		}
	}
	return false
}
