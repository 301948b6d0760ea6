package tag

import (
	"sort"
)

// Region is a matched open/close pair. Children holds same-name pairs nested
// inside it, in source order.
type Region struct {
	Open     Marker
	Close    Marker
	Children []Region
}

// Span returns the byte range of the whole region, markers included.
func (r Region) Span() (start, end int) {
	return r.Open.Start, r.Close.End
}

// Content returns the text strictly between the open and close markers.
func (r Region) Content(doc string) string {
	return doc[r.Open.End:r.Close.Start]
}

// nestedMarkers returns every marker of the nested children in source order.
func (r Region) nestedMarkers() []Marker {
	var out []Marker
	for _, c := range r.Children {
		out = append(out, c.Open)
		out = append(out, c.nestedMarkers()...)
		out = append(out, c.Close)
	}
	return out
}

// Match pairs markers into regions. A close marker pairs with the most recent
// unmatched open marker of the same name. Only top-level regions are returned,
// ordered by their open marker; they never overlap for a given name.
//
// doc is used only to build error context and may be empty.
func Match(doc string, markers []Marker) ([]Region, error) {
	type frame struct {
		open     Marker
		children []Region
	}

	stacks := make(map[string][]*frame)
	var regions []Region

	for _, m := range markers {
		if m.Kind == Open {
			stacks[m.Name] = append(stacks[m.Name], &frame{open: m})
			continue
		}

		stack := stacks[m.Name]
		if len(stack) == 0 {
			return nil, newUnbalancedTagError(doc, m)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stacks[m.Name] = stack

		r := Region{Open: top.open, Close: m, Children: top.children}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, r)
		} else {
			regions = append(regions, r)
		}
	}

	// Report the earliest open marker that was never closed.
	var pending *Marker
	for _, stack := range stacks {
		if len(stack) == 0 {
			continue
		}
		if pending == nil || stack[0].open.Start < pending.Start {
			pending = &stack[0].open
		}
	}
	if pending != nil {
		return nil, newUnbalancedTagError(doc, *pending)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Open.Start < regions[j].Open.Start
	})
	return regions, nil
}
