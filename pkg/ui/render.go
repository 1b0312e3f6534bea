// Package ui renders scan reports for the terminal and for machines.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/muesli/termenv"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/iamkaf/dirty/pkg/scan"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options control how a report is rendered.
type Options struct {
	Format string // FormatText, FormatJSON or FormatYAML
	Raw    bool   // Text only: bare relative paths, no summary
	Color  bool
}

// Renderer writes reports. Listings go to out; the empty-report notice goes
// to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	opts   Options

	dirty  lipgloss.Style
	local  lipgloss.Style
	ahead  lipgloss.Style
	failed lipgloss.Style
}

// NewRenderer creates a renderer. An empty format means text.
func NewRenderer(out, errOut io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatText
	}

	lr := lipgloss.NewRenderer(out)
	if opts.Color {
		lr.SetColorProfile(termenv.ANSI)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		opts:   opts,
		dirty:  lr.NewStyle().Foreground(lipgloss.Color("1")),
		local:  lr.NewStyle().Foreground(lipgloss.Color("3")),
		ahead:  lr.NewStyle().Foreground(lipgloss.Color("4")),
		failed: lr.NewStyle().Faint(true),
	}
}

// Render writes report in the configured format.
func (r *Renderer) Render(report *scan.Report) error {
	switch r.opts.Format {
	case FormatText:
		return r.renderText(report)
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(newDocument(report)), "failed to encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(report)); err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		return errors.Wrap(enc.Close(), "failed to encode yaml")
	default:
		return errors.Newf("unknown output format %q", r.opts.Format)
	}
}

func (r *Renderer) renderText(report *scan.Report) error {
	if r.opts.Raw {
		for _, s := range report.Entries {
			if _, err := fmt.Fprintln(r.out, s.RelPath); err != nil {
				return err
			}
		}
		return nil
	}

	if len(report.Entries) == 0 {
		_, err := fmt.Fprintln(r.errOut, EmptyMessage(report))
		return err
	}

	var b strings.Builder
	for _, s := range report.Entries {
		b.WriteString(r.Line(s, report.Filters.Unpushed))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(SummaryLine(report))
	b.WriteByte('\n')

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Line formats one repository. showAhead adds the commits-ahead badge.
func (r *Renderer) Line(s scan.RepoStatus, showAhead bool) string {
	if !s.Classified() {
		return r.paint(r.failed, fmt.Sprintf(" ! %s (%s)", s.RelPath, s.Err.Kind))
	}

	mark := " "
	if s.Dirty {
		mark = r.paint(r.dirty, "*")
	}

	var b strings.Builder
	fmt.Fprintf(&b, " %s %s", mark, s.RelPath)
	if s.LocalOnly {
		b.WriteString(" " + r.paint(r.local, "[local]"))
	}
	if showAhead {
		n := 0
		if s.Ahead != nil {
			n = *s.Ahead
		}
		b.WriteString(" " + r.paint(r.ahead, fmt.Sprintf("[↑%d]", n)))
	}
	return b.String()
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.opts.Color {
		return s
	}
	return style.Render(s)
}

// SummaryLine formats the closing counts of a text report.
func SummaryLine(report *scan.Report) string {
	s := report.Summary
	line := fmt.Sprintf("%d repos, %d dirty, %d local-only", s.Total, s.Dirty, s.LocalOnly)
	if report.Filters.Unpushed {
		line += fmt.Sprintf(", %d unpushed", s.Unpushed)
	}
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	if report.Filters.Active() {
		line += fmt.Sprintf(", %d shown", s.Shown)
	}
	return line
}

// EmptyMessage explains why a report lists nothing.
func EmptyMessage(report *scan.Report) string {
	if len(report.All) == 0 {
		return "No git repos found in " + report.Root
	}
	return "No matching repos found"
}

// ColorEnabled decides whether output written to f is colored. mode is the
// output.color setting; "auto" colors terminals unless NO_COLOR is set.
func ColorEnabled(mode string, noColor bool, f *os.File) bool {
	if noColor || mode == "never" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

type document struct {
	Root    string     `json:"root" yaml:"root"`
	Repos   []repoView `json:"repos" yaml:"repos"`
	Summary summary    `json:"summary" yaml:"summary"`
}

type repoView struct {
	Path      string     `json:"path" yaml:"path"`
	Bare      bool       `json:"bare" yaml:"bare"`
	Dirty     bool       `json:"dirty" yaml:"dirty"`
	LocalOnly bool       `json:"local_only" yaml:"local_only"`
	Ahead     *int       `json:"ahead,omitempty" yaml:"ahead,omitempty"`
	Error     *errorView `json:"error,omitempty" yaml:"error,omitempty"`
}

type errorView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

type summary struct {
	Total     int `json:"total" yaml:"total"`
	Dirty     int `json:"dirty" yaml:"dirty"`
	LocalOnly int `json:"local_only" yaml:"local_only"`
	Unpushed  int `json:"unpushed" yaml:"unpushed"`
	Failed    int `json:"failed" yaml:"failed"`
	Shown     int `json:"shown" yaml:"shown"`
}

func newDocument(report *scan.Report) document {
	doc := document{
		Root:  report.Root,
		Repos: make([]repoView, 0, len(report.Entries)),
		Summary: summary{
			Total:     report.Summary.Total,
			Dirty:     report.Summary.Dirty,
			LocalOnly: report.Summary.LocalOnly,
			Unpushed:  report.Summary.Unpushed,
			Failed:    report.Summary.Failed,
			Shown:     report.Summary.Shown,
		},
	}
	for _, s := range report.Entries {
		v := repoView{
			Path:      s.RelPath,
			Bare:      s.Bare,
			Dirty:     s.Dirty,
			LocalOnly: s.LocalOnly,
			Ahead:     s.Ahead,
		}
		if s.Err != nil {
			v.Error = &errorView{Kind: string(s.Err.Kind), Message: s.Err.Message}
		}
		doc.Repos = append(doc.Repos, v)
	}
	return doc
}
