package tag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/preproc/internal/pathtest"
)

// Engine applies pick, replace and remove to documents. An Engine holds no
// per-document state and is safe for concurrent use.
type Engine struct {
	defaultTag string
	tests      *pathtest.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultTag sets the tag used when an operation names none.
func WithDefaultTag(name string) Option {
	return func(e *Engine) { e.defaultTag = name }
}

// WithPathTestCache shares a compiled path test cache between engines.
func WithPathTestCache(c *pathtest.Cache) Option {
	return func(e *Engine) { e.tests = c }
}

// NewEngine creates an Engine with DefaultTag and a private path test cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{defaultTag: DefaultTag}
	for _, o := range opts {
		o(e)
	}
	if e.defaultTag == "" {
		e.defaultTag = DefaultTag
	}
	if e.tests == nil {
		e.tests = pathtest.NewCache()
	}
	return e
}

// TagName resolves an empty name to the engine's default tag.
func (e *Engine) TagName(name string) string {
	if name == "" {
		return e.defaultTag
	}
	return name
}

// Regions scans and matches the regions of a tag.
func (e *Engine) Regions(name, doc string) ([]Region, error) {
	markers, err := Scan(e.TagName(name), doc)
	if err != nil {
		return nil, err
	}
	return Match(doc, markers)
}

// Pick returns the content of the first region of the tag with nested
// same-name markers stripped. found is false when the document has no such
// region.
func (e *Engine) Pick(name, doc string) (content string, found bool, err error) {
	regions, err := e.Regions(name, doc)
	if err != nil {
		return "", false, err
	}
	if len(regions) == 0 {
		return "", false, nil
	}

	r := regions[0]
	nested := r.nestedMarkers()
	if len(nested) == 0 {
		return r.Content(doc), true, nil
	}

	var b strings.Builder
	pos := r.Open.End
	for _, m := range nested {
		b.WriteString(doc[pos:m.Start])
		pos = m.End
	}
	b.WriteString(doc[pos:r.Close.Start])
	return b.String(), true, nil
}

// Replace substitutes every region of the tag, markers included, with
// replacement when the region's path test applies to srcPath. A region whose
// open marker carries an inline test uses it instead of test. Regions that do
// not apply are kept unchanged, and a document without regions is returned
// as is.
func (e *Engine) Replace(name, replacement, doc, srcPath, test string) (string, error) {
	regions, err := e.Regions(name, doc)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return doc, nil
	}

	var b strings.Builder
	b.Grow(len(doc))
	pos := 0
	for _, r := range regions {
		start, end := r.Span()
		effective := test
		if r.Open.Test != "" {
			effective = r.Open.Test
		}

		ok, err := e.tests.Applies(effective, srcPath)
		if err != nil {
			return "", fmt.Errorf("tag %q at %s: %w", r.Open.Name, r.Open.Pos, err)
		}

		b.WriteString(doc[pos:start])
		if ok {
			b.WriteString(replacement)
		} else {
			b.WriteString(doc[start:end])
		}
		pos = end
	}
	b.WriteString(doc[pos:])
	return b.String(), nil
}

// Remove deletes every region of the tag whose path test applies. It is
// Replace with an empty replacement.
func (e *Engine) Remove(name, doc, srcPath, test string) (string, error) {
	return e.Replace(name, "", doc, srcPath, test)
}

// Summary describes the regions of one tag in a document.
type Summary struct {
	Tag     string       `json:"tag"`
	Regions []RegionInfo `json:"regions"`
}

// RegionInfo is a printable view of a region.
type RegionInfo struct {
	Pos    Position `json:"pos"`
	Test   string   `json:"test,omitempty"`
	Length int      `json:"length"`
	Nested int      `json:"nested"`
}

// Summarize lists the regions of several tags, sorted by tag name.
func (e *Engine) Summarize(doc string, names ...string) ([]Summary, error) {
	if len(names) == 0 {
		names = []string{e.defaultTag}
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	summaries := make([]Summary, 0, len(sorted))
	for _, name := range sorted {
		regions, err := e.Regions(name, doc)
		if err != nil {
			return nil, err
		}
		s := Summary{Tag: e.TagName(name)}
		for _, r := range regions {
			s.Regions = append(s.Regions, RegionInfo{
				Pos:    r.Open.Pos,
				Test:   r.Open.Test,
				Length: r.Close.Start - r.Open.End,
				Nested: len(r.nestedMarkers()) / 2,
			})
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

var defaultEngine = NewEngine()

// Pick calls Pick on a default engine.
func Pick(name, doc string) (string, bool, error) {
	return defaultEngine.Pick(name, doc)
}

// Replace calls Replace on a default engine.
func Replace(name, replacement, doc, srcPath, test string) (string, error) {
	return defaultEngine.Replace(name, replacement, doc, srcPath, test)
}

// Remove calls Remove on a default engine.
func Remove(name, doc, srcPath, test string) (string, error) {
	return defaultEngine.Remove(name, doc, srcPath, test)
}
