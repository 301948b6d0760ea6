package tag

import (
	"fmt"
	"strings"
)

// Position is a 1-based line and column in a document.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// MalformedTagError is returned by Scan when a marker of the requested tag is
// syntactically broken, e.g. an open marker with no closing bracket.
type MalformedTagError struct {
	Tag     string   // Name of the tag being scanned
	Offset  int      // Byte offset of the broken marker
	Pos     Position // Line and column of the broken marker
	Message string   // What is wrong with the marker
	Context string   // Surrounding lines with a caret under the marker
}

// Error implements the error interface.
func (e *MalformedTagError) Error() string {
	msg := fmt.Sprintf("malformed tag %q at %s: %s", e.Tag, e.Pos, e.Message)
	if e.Context != "" {
		msg += "\nContext:\n" + e.Context
	}
	return msg
}

// UnbalancedTagError is returned by Match when a close marker has no pending
// open marker, or an open marker is never closed.
type UnbalancedTagError struct {
	Tag     string
	Kind    Kind // Kind of the marker left without a partner
	Offset  int
	Pos     Position
	Context string
}

// Error implements the error interface.
func (e *UnbalancedTagError) Error() string {
	var msg string
	if e.Kind == Open {
		msg = fmt.Sprintf("unbalanced tag %q at %s: open marker is never closed", e.Tag, e.Pos)
	} else {
		msg = fmt.Sprintf("unbalanced tag %q at %s: close marker has no matching open marker", e.Tag, e.Pos)
	}
	if e.Context != "" {
		msg += "\nContext:\n" + e.Context
	}
	return msg
}

func newMalformedTagError(doc, name string, offset int, message string) *MalformedTagError {
	pos := positionAt(doc, offset)
	return &MalformedTagError{
		Tag:     name,
		Offset:  offset,
		Pos:     pos,
		Message: message,
		Context: extractContext(doc, pos),
	}
}

func newUnbalancedTagError(doc string, m Marker) *UnbalancedTagError {
	return &UnbalancedTagError{
		Tag:     m.Name,
		Kind:    m.Kind,
		Offset:  m.Start,
		Pos:     m.Pos,
		Context: extractContext(doc, m.Pos),
	}
}

// positionAt converts a byte offset into a line/column pair. Columns count
// runes, not bytes.
func positionAt(doc string, offset int) Position {
	if offset > len(doc) {
		offset = len(doc)
	}
	head := doc[:offset]
	line := strings.Count(head, "\n") + 1
	lineStart := strings.LastIndexByte(head, '\n') + 1
	return Position{Line: line, Column: len([]rune(head[lineStart:])) + 1}
}

// extractContext returns a few numbered lines around pos with the error line
// marked and a caret under the column.
func extractContext(doc string, pos Position) string {
	if doc == "" {
		return ""
	}

	lines := strings.Split(doc, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	startLine := max(0, pos.Line-3)
	endLine := min(len(lines)-1, pos.Line+1)

	var b strings.Builder
	for i := startLine; i <= endLine; i++ {
		lineNum := i + 1
		if lineNum == pos.Line {
			prefix := fmt.Sprintf("-> %d: ", lineNum)
			b.WriteString(prefix + lines[i] + "\n")
			b.WriteString(strings.Repeat(" ", len(prefix)+pos.Column-1) + "^\n")
		} else {
			fmt.Fprintf(&b, "   %d: %s\n", lineNum, lines[i])
		}
	}
	return b.String()
}
