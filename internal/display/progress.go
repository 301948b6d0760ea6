package display

import (
	"fmt"
	"io"
)

// ProgressIndicator prints one line per step of a multi-step check
type ProgressIndicator struct {
	writer   io.Writer
	title    string
	total    int
	current  int
	colorize bool
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, title string, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer:   w,
		title:    title,
		total:    total,
		colorize: colorEnabled(w),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "%s:\n", p.title)
}

// Step displays progress for the current item: [N/Total] name
func (p *ProgressIndicator) Step(name string) {
	p.current++
	line := fmt.Sprintf("  [%d/%d] %s", p.current, p.total, name)
	fmt.Fprintln(p.writer, paint(stepColor, line, p.colorize))
}

// Complete displays a success line with the number of items checked
func (p *ProgressIndicator) Complete(summary string) {
	fmt.Fprintf(p.writer, "%s %s\n", paint(successColor, "✓", p.colorize), summary)
}
