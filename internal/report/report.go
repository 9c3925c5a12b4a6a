// Package report renders analyses and proposals for the terminal or as JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	t "refactorgen/internal/types"
	"refactorgen/internal/util/jsonutil"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// CheckFormat rejects anything other than text or json.
func CheckFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown format: %s (want text|json)", format)
}

// Printer writes reports to W. Color is applied only when Color is set.
type Printer struct {
	W     io.Writer
	Color bool

	heading *color.Color
	name    *color.Color
	warn    *color.Color
	bad     *color.Color
	good    *color.Color
}

func NewPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		W:       w,
		Color:   useColor,
		heading: color.New(color.FgCyan, color.Bold),
		name:    color.New(color.FgYellow, color.Bold),
		warn:    color.New(color.FgYellow),
		bad:     color.New(color.FgRed, color.Bold),
		good:    color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.heading, p.name, p.warn, p.bad, p.good} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.W, format, args...)
}

// JSON writes v pretty-printed without HTML escaping, so source code stays
// readable.
func (p *Printer) JSON(v any) error {
	data, err := jsonutil.MarshalNoEscapeIndent(v, "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.W, "%s\n", data)
	return err
}

// Analysis prints a parsed model and its responsibility clusters.
func (p *Printer) Analysis(m *t.StructuralModel, format string) error {
	if format == FormatJSON {
		return p.JSON(m)
	}
	p.printf("%s\n", p.heading.Sprint("Module Analysis Results:"))
	p.printf("Name: %s\n", m.Name)
	p.printf("Path: %s\n", m.Path)

	p.printf("\n%s\n", p.heading.Sprint("Dependencies:"))
	for _, dep := range m.Dependencies {
		p.printf("  - %s\n", dep)
	}

	p.printf("\n%s\n", p.heading.Sprint("Subroutines:"))
	for _, s := range m.Subroutines {
		p.printf("\n  %s\n", p.name.Sprint(s.Name))
		p.printf("  Lines: %d-%d\n", s.LineStart, s.LineEnd)
		if len(s.Dependencies) > 0 {
			p.printf("  Dependencies:\n")
			for _, dep := range s.Dependencies {
				p.printf("    - %s\n", dep)
			}
		}
	}

	p.printf("\n%s\n", p.heading.Sprint("Responsibility Clusters:"))
	for _, c := range m.ResponsibilityClusters {
		p.printf("\n  %s\n", p.name.Sprint(c.Name))
		p.printf("  Description: %s\n", c.Description)
		p.printf("  Confidence: %.2f\n", c.Confidence)
		p.printf("  Related subroutines:\n")
		for _, s := range c.RelatedSubroutines {
			p.printf("    - %s\n", s)
		}
		if name := c.Suggested(); name != "" {
			p.printf("  Suggested module name: %s\n", name)
		}
	}
	return nil
}

// Proposal prints the suggested modules and the impact report.
func (p *Printer) Proposal(pr *t.RefactoringProposal, format string) error {
	if format == FormatJSON {
		return p.JSON(pr)
	}
	p.printf("%s %s\n", p.heading.Sprint("Refactoring Proposal for"), pr.OriginalModel.Name)

	p.printf("\n%s\n", p.heading.Sprint("Suggested modules:"))
	for _, m := range pr.SuggestedModules {
		p.printf("\n  %s (confidence: %.2f)\n", p.name.Sprint(m.Name), m.Confidence)
		p.printf("  Responsibility: %s\n", m.Responsibility)
		p.printf("  Subroutines: %s\n", strings.Join(m.SubroutineNames(), ", "))
		p.printf("  Dependencies: %s\n", strings.Join(m.Dependencies, ", "))
	}

	p.printf("\n%s\n", p.heading.Sprint("Impact Analysis:"))
	p.printf("  Complexity: %d\n", pr.Impact.Complexity)
	p.printf("  Effort: %s\n", p.effort(pr.Impact.Effort))
	if len(pr.Impact.Risks) > 0 {
		p.printf("\n  Risks:\n")
		for _, r := range pr.Impact.Risks {
			p.printf("    - %s\n", p.warn.Sprint(r))
		}
	}
	if len(pr.Impact.Benefits) > 0 {
		p.printf("\n  Benefits:\n")
		for _, b := range pr.Impact.Benefits {
			p.printf("    - %s\n", b)
		}
	}
	return nil
}

func (p *Printer) effort(e t.EffortTier) string {
	switch e {
	case t.EffortLow:
		return p.good.Sprint(e.String())
	case t.EffortMedium:
		return p.warn.Sprint(e.String())
	default:
		return p.bad.Sprint(e.String())
	}
}

// Validation prints issues and warnings; nothing is printed for a clean
// result with no warnings.
func (p *Printer) Validation(r t.ValidationResult) {
	if r.Valid && len(r.Warnings) == 0 {
		return
	}
	if r.Valid {
		p.printf("\n%s\n", p.good.Sprint("Validation passed with warnings:"))
	} else {
		p.printf("\n%s\n", p.bad.Sprint("Validation failed:"))
		for _, issue := range r.Issues {
			p.printf("  - %s\n", p.bad.Sprint(issue))
		}
	}
	for _, w := range r.Warnings {
		p.printf("  ! %s\n", p.warn.Sprint(w))
	}
}

// Written lists files produced by the artifact writer.
func (p *Printer) Written(baseDir string, paths []string) {
	p.printf("\nWriting refactored modules to: %s\n", baseDir)
	for _, path := range paths {
		p.printf("  - Written: %s\n", path)
	}
}

// Published lists uploaded object keys, with links when available.
func (p *Printer) Published(runID string, keys []string, urls map[string]string) {
	p.printf("\nPublished run %s:\n", p.name.Sprint(runID))
	for _, k := range keys {
		if u := urls[k]; u != "" {
			p.printf("  - %s\n    %s\n", k, u)
			continue
		}
		p.printf("  - %s\n", k)
	}
}
