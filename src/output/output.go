// Package output renders run reports for terminals, CI logs and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/TurboCoder13/py-lintro-sub001/src/execute"
)

// Output formats accepted by --output-format.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// Printer writes run reports.
type Printer struct {
	Writer io.Writer
	Color  bool
}

// NewPrinter creates a printer writing to stdout with color auto-detection.
func NewPrinter() *Printer {
	return &Printer{
		Writer: os.Stdout,
		Color:  UseColor(os.Stdout),
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// UseColor returns true if colored output should be used for f.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(f) || IsCI()
}

// StateStatus maps a terminal state to a StatusIcon status.
func StateStatus(o execute.Outcome) string {
	switch {
	case o.State == execute.Skipped:
		return StatusSkipped
	case o.State == execute.Failed, !o.Result.Success:
		return StatusFailed
	}
	return StatusSuccess
}

// Report writes one section per tool with its output, then the summary.
func (p *Printer) Report(r *execute.Report) {
	for _, o := range r.Outcomes {
		p.outcome(o)
	}
	p.Summary(r)
}

func (p *Printer) outcome(o execute.Outcome) {
	name := o.Tool
	if o.PostCheck {
		name += " (post-check)"
	}
	GroupStart(p.Writer, "lintro_"+o.Tool, name)
	sec := NewSection(p.Writer, name, o.Duration, p.Color)
	switch o.State {
	case execute.Skipped:
		sec.Row("%s %s", StatusIcon(StatusSkipped, p.Color), Dimmed(o.Reason, p.Color))
	default:
		sec.Block(o.Result.Output)
		if strings.TrimSpace(o.Result.Output) != "" {
			sec.Separator()
		}
		sec.Row("%s %s", StatusIcon(StateStatus(o), p.Color), p.detail(o))
	}
	sec.Close()
	GroupEnd(p.Writer, "lintro_"+o.Tool)
}

// detail is the one-line result description shown beside the status icon.
func (p *Printer) detail(o execute.Outcome) string {
	res := o.Result
	if o.State == execute.Failed {
		return paint("failed to run", p.Color, color.FgRed) + ": " + firstLine(res.Output)
	}
	if res.FixedCount > 0 || res.RemainingCount > 0 {
		return fmt.Sprintf("%d fixed, %d remaining", res.FixedCount, res.RemainingCount)
	}
	if res.IssuesCount == 0 {
		return "no issues"
	}
	return plural(res.IssuesCount, "issue")
}

// Summary writes the per-tool results table and the totals line.
func (p *Printer) Summary(r *execute.Report) {
	sec := NewSection(p.Writer, "Summary", r.Duration, p.Color)
	sec.Row("%-16s %-10s %7s %7s %9s", "tool", "status", "issues", "fixed", "remaining")
	for _, o := range r.Outcomes {
		status := o.State.String()
		sec.Row("%-16s %s %-8s %7d %7d %9d",
			o.Tool,
			StatusIcon(StateStatus(o), p.Color),
			status,
			o.Result.IssuesCount,
			o.Result.FixedCount,
			o.Result.RemainingCount,
		)
	}
	sec.Separator()
	sec.Row("%s", SummaryLine(r, p.Color))
	sec.Close()
}

// SummaryLine returns a one-line totals summary, optionally colored.
func SummaryLine(r *execute.Report, useColor bool) string {
	var parts []string
	if r.Mode == execute.ModeFix {
		parts = append(parts, fmt.Sprintf("%d fixed", r.TotalFixed))
		if r.TotalRemaining > 0 {
			parts = append(parts, paint(fmt.Sprintf("%d remaining", r.TotalRemaining), useColor, color.FgYellow))
		}
	} else if r.TotalIssues > 0 {
		parts = append(parts, paint(plural(r.TotalIssues, "issue"), useColor, color.FgRed))
	} else {
		parts = append(parts, "no issues")
	}
	if n := r.Count(execute.Failed); n > 0 {
		parts = append(parts, paint(fmt.Sprintf("%d failed", n), useColor, color.FgRed))
	}
	if n := r.Count(execute.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}

	status := StatusSuccess
	if r.ExitCode() != 0 {
		status = StatusFailed
	}
	return fmt.Sprintf("%s %s: %s", StatusIcon(status, useColor), Bold(plural(len(r.Outcomes), "tool"), useColor), strings.Join(parts, ", "))
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *execute.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
