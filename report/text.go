// Package report renders evaluation results for people and for machines,
// and maps verdicts onto process exit codes.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/c360studio/constraintsim/facility"
)

// ColorMode controls ANSI styling of text reports.
type ColorMode string

// ColorAuto styles only when the writer is a terminal.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode maps a config or flag value onto a ColorMode.
func ParseColorMode(s string) (ColorMode, bool) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, true
	}
	return "", false
}

// Options configures text rendering.
type Options struct {
	Color ColorMode
}

const ruleWidth = 70

var (
	colorQualified    = lipgloss.Color("2")
	colorDisqualified = lipgloss.Color("1")
	colorUnknown      = lipgloss.Color("3")
)

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	verdict map[facility.Verdict]lipgloss.Style
}

func newStyles(w io.Writer, mode ColorMode) styles {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		title:   r.NewStyle().Bold(true),
		heading: r.NewStyle().Bold(true),
		verdict: map[facility.Verdict]lipgloss.Style{
			facility.VerdictQualified:    r.NewStyle().Bold(true).Foreground(colorQualified),
			facility.VerdictDisqualified: r.NewStyle().Bold(true).Foreground(colorDisqualified),
			facility.VerdictUnknown:      r.NewStyle().Bold(true).Foreground(colorUnknown),
		},
	}
}

func (s styles) verdictStyle(v facility.Verdict) lipgloss.Style {
	if st, ok := s.verdict[v]; ok {
		return st
	}
	return s.heading
}

// Symbol returns the marker printed next to a verdict.
func Symbol(v facility.Verdict) string {
	switch v {
	case facility.VerdictQualified:
		return "✓"
	case facility.VerdictDisqualified:
		return "✗"
	default:
		return "?"
	}
}

// RenderText writes the human-readable report for one result.
func RenderText(w io.Writer, result facility.Result, opts Options) error {
	st := newStyles(w, opts.Color)
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(st.title.Render("CONSTRAINT SIMULATOR - EVALUATION REPORT") + "\n")
	b.WriteString(rule + "\n\n")

	verdict := fmt.Sprintf("%s %s", Symbol(result.Verdict), result.Verdict)
	b.WriteString("VERDICT: " + st.verdictStyle(result.Verdict).Render(verdict) + "\n\n")

	writeSection(&b, st, "DISQUALIFIERS", result.Disqualifiers)
	writeSection(&b, st, "CAUTION FLAGS", result.CautionFlags)
	writeSection(&b, st, "MISSING/INVALID FIELDS", result.MissingFields)

	if len(result.Notes) > 0 {
		b.WriteString(st.heading.Render("EVALUATION NOTES:") + "\n")
		for _, note := range result.Notes {
			b.WriteString("  " + note + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, st styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(st.heading.Render(fmt.Sprintf("%s (%d):", title, len(items))) + "\n")
	for _, item := range items {
		b.WriteString("  • " + item + "\n")
	}
	b.WriteString("\n")
}
