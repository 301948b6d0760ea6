package tag

import (
	"strings"
)

// DefaultTag is the tag name used when an operation does not name one.
const DefaultTag = "SPEC"

// Kind tells whether a marker opens or closes a region.
type Kind int

const (
	Open Kind = iota
	Close
)

// String returns "open" or "close".
func (k Kind) String() string {
	if k == Open {
		return "open"
	}
	return "close"
}

// Marker is one located open or close delimiter.
type Marker struct {
	Kind  Kind
	Name  string
	Start int // Byte offset of the first byte, comment wrapper included
	End   int // Byte offset just past the last byte, comment wrapper included
	Test  string
	Pos   Position
}

// comment wrappers that are absorbed into a marker when both halves surround
// the bracketed part. A line comment has no closing half.
var wrappers = []struct {
	open, close string
}{
	{"/*", "*/"},
	{"<!--", "-->"},
	{"//", ""},
}

// Scan returns the markers of the named tag in document order. An empty name
// scans for DefaultTag.
func Scan(name, doc string) ([]Marker, error) {
	if name == "" {
		name = DefaultTag
	}

	var markers []Marker
	i := 0
	for i < len(doc) {
		k := strings.IndexByte(doc[i:], '[')
		if k < 0 {
			break
		}
		p := i + k
		rest := doc[p+1:]

		switch {
		case strings.HasPrefix(rest, name):
			after := p + 1 + len(name)
			// [NAME/ opens; [NAMEX or [NAME] is something else
			if after >= len(doc) || doc[after] != '/' {
				i = p + 1
				continue
			}
			m, err := scanOpen(doc, name, p, after+1)
			if err != nil {
				return nil, err
			}
			markers = append(markers, m)
			i = m.End

		case strings.HasPrefix(rest, "/"+name):
			after := p + 2 + len(name)
			if after < len(doc) && isNameByte(doc[after]) {
				i = p + 1
				continue
			}
			m, err := scanClose(doc, name, p, after)
			if err != nil {
				return nil, err
			}
			markers = append(markers, m)
			i = m.End

		default:
			i = p + 1
		}
	}
	return markers, nil
}

// scanOpen parses "[NAME/ test]" where p is the offset of '[' and q the offset
// just past the slash.
func scanOpen(doc, name string, p, q int) (Marker, error) {
	lineEnd := strings.IndexByte(doc[q:], '\n')
	if lineEnd < 0 {
		lineEnd = len(doc)
	} else {
		lineEnd += q
	}

	c := strings.IndexByte(doc[q:lineEnd], ']')
	if c < 0 {
		return Marker{}, newMalformedTagError(doc, name, p, "open marker is not terminated by ']'")
	}

	raw := doc[q : q+c]
	test := strings.TrimSpace(raw)
	if test != "" && !isSpace(raw[0]) {
		return Marker{}, newMalformedTagError(doc, name, p, "inline path test must be separated from '/' by whitespace")
	}

	start, end := absorbWrapper(doc, p, q+c+1)
	return Marker{
		Kind:  Open,
		Name:  name,
		Start: start,
		End:   end,
		Test:  test,
		Pos:   positionAt(doc, start),
	}, nil
}

// scanClose parses "[/NAME]" where p is the offset of '[' and q the offset just
// past the name.
func scanClose(doc, name string, p, q int) (Marker, error) {
	j := q
	for j < len(doc) && isSpace(doc[j]) {
		j++
	}
	if j >= len(doc) || doc[j] != ']' {
		return Marker{}, newMalformedTagError(doc, name, p, "close marker must be \"[/"+name+"]\"")
	}

	start, end := absorbWrapper(doc, p, j+1)
	return Marker{
		Kind:  Close,
		Name:  name,
		Start: start,
		End:   end,
		Pos:   positionAt(doc, start),
	}, nil
}

// absorbWrapper widens the bracket span [start, end) to include a surrounding
// comment wrapper, if one is present.
func absorbWrapper(doc string, start, end int) (int, int) {
	ls := start
	for ls > 0 && isSpace(doc[ls-1]) {
		ls--
	}
	rs := end
	for rs < len(doc) && isSpace(doc[rs]) {
		rs++
	}

	for _, w := range wrappers {
		if !strings.HasSuffix(doc[:ls], w.open) {
			continue
		}
		if w.close == "" {
			return ls - len(w.open), end
		}
		if strings.HasPrefix(doc[rs:], w.close) {
			return ls - len(w.open), rs + len(w.close)
		}
	}
	return start, end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' || b == '.' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}

// ValidName reports whether name can be used as a tag name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}
