package checks

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.Bold)
	errorColor  = color.New(color.FgRed)
	warnColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	faintColor  = color.New(color.Faint)
)

func banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerColor.Sprint(title))
	fmt.Fprintln(w, strings.Repeat("═", len([]rune(title))))
}

// Render writes the report in human-readable form.
func (r *DeadLinkReport) Render(w io.Writer) {
	banner(w, "Dead Link Check Report")
	fmt.Fprintf(w, "Scanned: %d files, %d links\n\n", r.Scanned, r.Checked)

	if len(r.Dead) == 0 {
		fmt.Fprintln(w, okColor.Sprint("No dead links found."))
		return
	}

	fmt.Fprintln(w, errorColor.Sprintf("Found %d dead link(s):", len(r.Dead)))
	fmt.Fprintln(w)
	for i, d := range r.Dead {
		fmt.Fprintf(w, "%d. %s\n", i+1, errorColor.Sprint(d.Path))
		fmt.Fprintf(w, "   Location: %s\n", faintColor.Sprint(d.Location))
		fmt.Fprintf(w, "   Source:   %s\n\n", d.Source)
	}
}

// Render writes the report in human-readable form.
func (r *AssetReport) Render(w io.Writer) {
	banner(w, "Asset Check Report")
	fmt.Fprintf(w, "Scanned: %d files, %d image references\n\n", r.Scanned, r.Checked)

	if len(r.Missing) == 0 {
		fmt.Fprintln(w, okColor.Sprint("All referenced assets exist."))
		return
	}

	fmt.Fprintln(w, errorColor.Sprintf("Found %d missing asset(s):", len(r.Missing)))
	fmt.Fprintln(w)
	for _, m := range r.Missing {
		fmt.Fprintf(w, "  %s:%d\n", m.File, m.Line)
		fmt.Fprintf(w, "    Missing: %s\n", errorColor.Sprint(m.AssetPath))
	}
}

// Render writes the report in human-readable form.
func (r *UnreferencedReport) Render(w io.Writer) {
	banner(w, "Unreferenced Files Report")
	fmt.Fprintf(w, "Documentation files: %d, referenced: %d\n\n", r.Total, r.Referenced)

	if len(r.Files) == 0 {
		fmt.Fprintln(w, okColor.Sprint("All documentation files are referenced."))
		return
	}

	fmt.Fprintln(w, warnColor.Sprintf("Found %d unreferenced file(s):", len(r.Files)))
	fmt.Fprintln(w)
	for _, f := range r.Files {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, faintColor.Sprint("These files are not reachable from the navigation or from any referenced page."))
}
