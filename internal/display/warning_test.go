package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/harrison/preproc/internal/pathtest"
	"github.com/harrison/preproc/internal/tag"
)

func TestWarningRender(t *testing.T) {
	tests := []struct {
		name    string
		warning Warning
		want    []string
		absent  []string
	}{
		{
			name:    "title only",
			warning: Warning{Title: "Nothing to do"},
			want:    []string{"Warning: Nothing to do\n"},
			absent:  []string{"Affected", "Suggestion"},
		},
		{
			name:    "multi-line message is indented",
			warning: Warning{Title: "T", Message: "first\nsecond\n"},
			want:    []string{"    first\n", "    second\n"},
		},
		{
			name:    "single file",
			warning: Warning{Title: "T", Files: []string{"src/a.html"}},
			want:    []string{"    Affected file:\n", "      1. src/a.html\n"},
		},
		{
			name:    "multiple files",
			warning: Warning{Title: "T", Files: []string{"a", "b"}},
			want:    []string{"Affected files:", "      1. a\n", "      2. b\n"},
		},
		{
			name:    "suggestion",
			warning: Warning{Title: "T", Suggestion: "Fix it"},
			want:    []string{"    Suggestion:\n    Fix it\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.warning.Render(false)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(out, absent) {
					t.Errorf("unexpected %q in output:\n%s", absent, out)
				}
			}
			if strings.Contains(out, "\x1b[") {
				t.Error("uncolored output contains escape codes")
			}
		})
	}
}

func TestWarningRenderColor(t *testing.T) {
	out := Warning{Title: "T"}.Render(true)
	if !strings.HasPrefix(out, "\x1b[33m") {
		t.Errorf("expected yellow prefix, got %q", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m") {
		t.Errorf("expected reset suffix, got %q", out)
	}
}

func TestWarningDisplayToBufferIsPlain(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "T", Message: "m"}.Display(&buf)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("buffer output should not be colored: %q", buf.String())
	}
}

func TestTagWarning(t *testing.T) {
	_, malformedErr := tag.Scan("DOC", "x\n[DOC/oops]")
	_, unbalancedErr := tag.NewEngine().Regions("DOC", "a [DOC/] b")
	_, closeErr := tag.NewEngine().Regions("DOC", "a [/DOC] b")
	_, testErr := pathtest.Compile("re:[")

	tests := []struct {
		name  string
		err   error
		title string
		want  string
	}{
		{"malformed", malformedErr, `Malformed tag "DOC" in target site at line 2, column 1`, "[DOC/ path-test]"},
		{"unclosed", unbalancedErr, `Unbalanced tag "DOC" in target site`, "Add the matching [/DOC] marker"},
		{"stray close", closeErr, `Unbalanced tag "DOC" in target site`, "Remove the stray [/DOC] marker"},
		{"path test", testErr, "Invalid path test in target site", "lit:, re:"},
		{"other", errors.New("boom"), "Target site cannot be processed", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("test setup produced no error")
			}
			w := TagWarning("site", []string{"src/index.html"}, tt.err)
			if w.Title != tt.title && !strings.HasPrefix(w.Title, tt.title) {
				t.Errorf("Title = %q, want prefix %q", w.Title, tt.title)
			}
			out := w.Render(false)
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, out)
			}
			if !strings.Contains(out, "1. src/index.html") {
				t.Errorf("missing file list:\n%s", out)
			}
		})
	}
}
