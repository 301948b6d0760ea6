package display

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/preproc/internal/pathtest"
	"github.com/harrison/preproc/internal/tag"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	fmt.Fprint(out, w.Render(colorEnabled(out)))
}

// Render formats the warning.
func (w Warning) Render(colorize bool) string {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		for _, line := range strings.Split(strings.TrimRight(w.Message, "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	return paint(warnColor, b.String(), colorize)
}

// TagWarning describes a tag error found while checking a target's sources.
func TagWarning(target string, files []string, err error) Warning {
	w := Warning{Files: files}

	var malformed *tag.MalformedTagError
	var unbalanced *tag.UnbalancedTagError
	var badTest *pathtest.Error

	switch {
	case errors.As(err, &malformed):
		w.Title = fmt.Sprintf("Malformed tag %q in target %s at %s", malformed.Tag, target, malformed.Pos)
		w.Message = malformed.Message + "\n" + malformed.Context
		w.Suggestion = fmt.Sprintf("Write markers as [%s/], [%s/ path-test] and [/%s]", malformed.Tag, malformed.Tag, malformed.Tag)
	case errors.As(err, &unbalanced):
		w.Title = fmt.Sprintf("Unbalanced tag %q in target %s at %s", unbalanced.Tag, target, unbalanced.Pos)
		if unbalanced.Kind == tag.Open {
			w.Message = "open marker is never closed\n" + unbalanced.Context
			w.Suggestion = fmt.Sprintf("Add the matching [/%s] marker", unbalanced.Tag)
		} else {
			w.Message = "close marker has no matching open marker\n" + unbalanced.Context
			w.Suggestion = fmt.Sprintf("Remove the stray [/%s] marker or add its [%s/]", unbalanced.Tag, unbalanced.Tag)
		}
	case errors.As(err, &badTest):
		w.Title = fmt.Sprintf("Invalid path test in target %s", target)
		w.Message = badTest.Error()
		w.Suggestion = "Use lit:, re:, /regex/flags, glob: or expr: tests"
	default:
		w.Title = fmt.Sprintf("Target %s cannot be processed", target)
		w.Message = err.Error()
	}
	return w
}
