// Package display formats user-facing command output: warnings about tag
// problems found by validate, and step-by-step progress lines.
//
// Display a warning with optional components:
//
//	warning := display.Warning{
//	    Title:      "Unbalanced tag \"DOC\" in target site",
//	    Message:    "open marker is never closed",
//	    Files:      []string{"src/index.html"},
//	    Suggestion: "Add the matching [/DOC] marker",
//	}
//	warning.Display(os.Stderr)
//
// Or build one straight from a tag error:
//
//	warning := display.TagWarning("site", sources, err)
//
// Colors come from fatih/color and are only written when the output is a
// terminal. All functions accept io.Writer for testability.
package display
