package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

const sectionWidth = 61 // inner width between │ and line end

// Section renders a box-drawing framed output section.
type Section struct {
	w     io.Writer
	name  string
	color bool
}

// NewSection creates a section and writes its header.
// If elapsed is non-zero, it appears right-aligned in the header.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, name: name, color: color}
	s.writeHeader(elapsed)
	return s
}

// Row writes a content line inside the section frame.
func (s *Section) Row(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(s.w, "    │ %s\n", line)
}

// Block writes multi-line text as rows, dropping trailing blank lines.
func (s *Section) Block(text string) {
	text = strings.TrimRight(text, "\n ")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		s.Row("%s", line)
	}
}

// Separator writes a mid-section divider.
func (s *Section) Separator() {
	fmt.Fprintf(s.w, "    ├%s\n", strings.Repeat("─", sectionWidth))
}

// Close writes the section footer.
func (s *Section) Close() {
	fmt.Fprintf(s.w, "    └%s\n", strings.Repeat("─", sectionWidth))
}

// writeHeader renders: ── Name ──────────────────── elapsed ──
func (s *Section) writeHeader(elapsed time.Duration) {
	label := fmt.Sprintf("── %s ", s.name)

	var suffix string
	if elapsed > 0 {
		suffix = fmt.Sprintf(" %s ──", formatElapsed(elapsed))
	} else {
		suffix = "──"
	}

	fill := sectionWidth + 4 - len([]rune(label)) - len([]rune(suffix))
	if fill < 1 {
		fill = 1
	}

	header := label + strings.Repeat("─", fill) + suffix
	fmt.Fprintf(s.w, "\n    %s\n", paint(header, s.color, color.Faint, color.FgCyan))
}

// Status values understood by StatusIcon.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StatusIcon returns a status icon, colored when color is set.
func StatusIcon(status string, useColor bool) string {
	switch status {
	case StatusSuccess:
		return paint("✓", useColor, color.FgGreen)
	case StatusFailed:
		return paint("✗", useColor, color.FgRed)
	default:
		return paint("⊘", useColor, color.FgYellow)
	}
}

// Dimmed returns dimmed text if color is enabled.
func Dimmed(text string, useColor bool) string {
	return paint(text, useColor, color.FgHiBlack)
}

// Bold returns bold text if color is enabled.
func Bold(text string, useColor bool) string {
	return paint(text, useColor, color.Bold)
}

// paint applies attrs regardless of the library's global NO_COLOR detection;
// the caller has already decided whether color is wanted.
func paint(text string, useColor bool, attrs ...color.Attribute) string {
	if !useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// KV is a key-value pair for the context block.
type KV struct {
	Key   string
	Value string
}

// ContextBlock prints an aligned key-value header, two pairs per line.
func ContextBlock(w io.Writer, kv []KV) {
	if len(kv) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(w, "    %-12s%-22s%-11s%s\n",
				kv[i].Key, kv[i].Value, kv[i+1].Key, kv[i+1].Value)
		} else {
			fmt.Fprintf(w, "    %-12s%s\n", kv[i].Key, kv[i].Value)
		}
	}
}

// formatElapsed formats a duration for display in section headers.
func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}
