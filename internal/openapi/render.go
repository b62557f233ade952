package openapi

import (
	"fmt"
	"io"
	"path"

	"github.com/fatih/color"
)

var (
	okColor    = color.New(color.FgGreen)
	skipColor  = color.New(color.Faint)
	errorColor = color.New(color.FgRed)
	boldColor  = color.New(color.Bold)
)

// Counts tallies a batch of FileResults.
type Counts struct {
	Modified, Unchanged, Failed int
}

// Tally counts results by outcome.
func Tally(results []FileResult) Counts {
	var c Counts
	for _, r := range results {
		switch {
		case r.Err != nil:
			c.Failed++
		case r.Modified:
			c.Modified++
		default:
			c.Unchanged++
		}
	}
	return c
}

// RenderResults writes one line per file followed by a summary. verb names
// the change made to modified files, such as "enhanced".
func RenderResults(w io.Writer, title, verb string, results []FileResult) {
	fmt.Fprintln(w, boldColor.Sprint(title))
	for _, r := range results {
		name := path.Base(r.Path)
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "  %s %s: %v\n", errorColor.Sprint("✗"), name, r.Err)
		case r.Modified:
			line := fmt.Sprintf("  %s %s %s", okColor.Sprint("✓"), verb, name)
			if r.Title != "" {
				line += fmt.Sprintf(" (title: %s)", r.Title)
			}
			fmt.Fprintln(w, line)
		default:
			fmt.Fprintf(w, "  %s %s unchanged\n", skipColor.Sprint("-"), name)
		}
	}
	c := Tally(results)
	fmt.Fprintf(w, "\n%d %s, %d unchanged, %d failed\n", c.Modified, verb, c.Unchanged, c.Failed)
}

// Render writes the navigation rebuild summary and the services found per
// category.
func (s *NavSummary) Render(w io.Writer, tab string) {
	fmt.Fprintf(w, "%s Updated %q tab: %d spec(s), %d group(s)\n", okColor.Sprint("✓"), tab, s.Specs, s.Groups)
	for _, c := range s.Categories {
		fmt.Fprintf(w, "\n%s\n", boldColor.Sprint(c.Name))
		for _, svc := range c.Services {
			fmt.Fprintf(w, "  - %s\n", svc)
		}
	}
}
