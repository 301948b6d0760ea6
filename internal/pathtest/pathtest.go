// Package pathtest evaluates the path conditions that gate replace and remove
// operations.
//
// A test is a string in one of these forms:
//
//	src/dev/                 literal: the path contains the text
//	lit:/abs/path            literal, forced
//	/\.min\.js$/i            regular expression between slashes: needs i/m/s flags
//	                         or a regexp operator, otherwise it is a literal path
//	re:^/srv/                regular expression, forced
//	**/*.html                glob (any of * ? [ {), ** crosses directories
//	glob:docs/index.md       glob, forced
//	expr:ext == ".js"        expr-lang boolean over path, dir, base and ext
//
// Paths are compared in slash form. A relative glob may match any trailing
// part of the path; a glob without a slash is matched against the base name.
package pathtest

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/harrison/preproc/internal/fileutil"
)

// Kind is the matching strategy of a compiled test.
type Kind int

const (
	Literal Kind = iota
	Regexp
	Glob
	Expr
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Regexp:
		return "regexp"
	case Glob:
		return "glob"
	case Expr:
		return "expr"
	default:
		return "unknown"
	}
}

// Error reports a test that cannot be compiled or evaluated.
type Error struct {
	Test string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("invalid path test %q: %v", e.Test, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Test is a compiled path test. It is safe for concurrent use.
type Test struct {
	raw     string
	kind    Kind
	literal string
	re      *regexp.Regexp
	glob    string
	program *vm.Program
}

// exprEnv is the variable set visible to expr tests.
type exprEnv struct {
	Path string `expr:"path"`
	Dir  string `expr:"dir"`
	Base string `expr:"base"`
	Ext  string `expr:"ext"`
}

// Compile parses a test string.
func Compile(raw string) (*Test, error) {
	t := &Test{raw: raw}

	switch {
	case strings.HasPrefix(raw, "lit:"):
		t.kind = Literal
		t.literal = filepath.ToSlash(strings.TrimPrefix(raw, "lit:"))

	case strings.HasPrefix(raw, "re:"):
		re, err := regexp.Compile(strings.TrimPrefix(raw, "re:"))
		if err != nil {
			return nil, &Error{Test: raw, Err: err}
		}
		t.kind, t.re = Regexp, re

	case strings.HasPrefix(raw, "glob:"):
		t.kind = Glob
		t.glob = normalizeGlob(strings.TrimSpace(strings.TrimPrefix(raw, "glob:")))
		if !fileutil.ValidGlob(t.glob) {
			return nil, &Error{Test: raw, Err: errors.New("malformed glob")}
		}

	case strings.HasPrefix(raw, "expr:"):
		program, err := expr.Compile(strings.TrimSpace(strings.TrimPrefix(raw, "expr:")),
			expr.Env(exprEnv{}), expr.AsBool())
		if err != nil {
			return nil, &Error{Test: raw, Err: err}
		}
		t.kind, t.program = Expr, program

	default:
		if pattern, flags, ok := splitSlashed(raw); ok {
			if flags != "" {
				pattern = "(?" + flags + ")" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &Error{Test: raw, Err: err}
			}
			t.kind, t.re = Regexp, re
		} else if fileutil.HasMeta(raw) {
			t.kind = Glob
			t.glob = normalizeGlob(raw)
			if !fileutil.ValidGlob(t.glob) {
				return nil, &Error{Test: raw, Err: errors.New("malformed glob")}
			}
		} else {
			t.kind = Literal
			t.literal = filepath.ToSlash(raw)
		}
	}
	return t, nil
}

// regexpOperators are the characters that mark the body of "/.../" as a
// regular expression rather than a directory path.
const regexpOperators = `\^$|+(){}`

// splitSlashed recognizes "/pattern/flags" where flags only uses i, m and s.
// Without flags the pattern must use a regexp operator, so that a directory
// path like /src/dev/ or /srv/app stays a literal.
func splitSlashed(raw string) (pattern, flags string, ok bool) {
	if len(raw) < 3 || raw[0] != '/' {
		return "", "", false
	}
	last := strings.LastIndexByte(raw, '/')
	if last == 0 {
		return "", "", false
	}
	flags = raw[last+1:]
	if strings.Trim(flags, "ims") != "" {
		return "", "", false
	}
	pattern = raw[1:last]
	if pattern == "" {
		return "", "", false
	}
	if flags == "" && !strings.ContainsAny(pattern, regexpOperators) {
		return "", "", false
	}
	return pattern, flags, true
}

func normalizeGlob(g string) string {
	g = filepath.ToSlash(g)
	if !strings.Contains(g, "/") {
		return g
	}
	if strings.HasPrefix(g, "/") || strings.HasPrefix(g, "**/") {
		return g
	}
	return "**/" + g
}

// String returns the test as written.
func (t *Test) String() string {
	return t.raw
}

// Kind returns the matching strategy.
func (t *Test) Kind() Kind {
	return t.kind
}

// Match evaluates the test against a source path.
func (t *Test) Match(srcPath string) (bool, error) {
	p := filepath.ToSlash(srcPath)

	switch t.kind {
	case Literal:
		return strings.Contains(p, t.literal), nil
	case Regexp:
		return t.re.MatchString(p), nil
	case Glob:
		if !strings.Contains(t.glob, "/") {
			return fileutil.MatchGlob(t.glob, path.Base(p)), nil
		}
		return fileutil.MatchGlob(t.glob, p), nil
	case Expr:
		env := exprEnv{
			Path: p,
			Dir:  path.Dir(p),
			Base: path.Base(p),
			Ext:  path.Ext(p),
		}
		out, err := expr.Run(t.program, env)
		if err != nil {
			return false, &Error{Test: t.raw, Err: err}
		}
		ok, _ := out.(bool)
		return ok, nil
	default:
		return false, &Error{Test: t.raw, Err: fmt.Errorf("unknown test kind %d", t.kind)}
	}
}
