package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	warnColor    = color.New(color.FgYellow)
	stepColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
)

// colorEnabled reports whether w is a terminal that accepts colors.
func colorEnabled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// paint wraps s in c when enabled. EnableColor overrides color.NoColor so
// the result does not depend on the process's own stdout.
func paint(c *color.Color, s string, enabled bool) string {
	if !enabled {
		return s
	}
	painted := *c
	painted.EnableColor()
	return painted.Sprint(s)
}
