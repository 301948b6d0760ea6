package executor

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

// Diff renders a line diff from before to after. Long unchanged runs are
// collapsed to a marker line. Identical inputs give "".
func Diff(name, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s (sources)\n+++ %s (output)\n", name, name)
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffInsert:
			writeLines(&sb, "+", text)
		case diffpatch.DiffDelete:
			writeLines(&sb, "-", text)
		case diffpatch.DiffEqual:
			writeEqual(&sb, text, i == 0, i == len(diffs)-1)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// writeEqual keeps diffContext lines on each side that touches a change.
func writeEqual(sb *strings.Builder, text []string, first, last bool) {
	head, tail := diffContext, diffContext
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(text) <= head+tail {
		writeLines(sb, " ", text)
		return
	}
	writeLines(sb, " ", text[:head])
	fmt.Fprintf(sb, "@@ %d unchanged lines @@\n", len(text)-head-tail)
	writeLines(sb, " ", text[len(text)-tail:])
}

func writeLines(sb *strings.Builder, prefix string, text []string) {
	for _, line := range text {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
