package query

import "github.com/dgallion1/mdquery/internal/doctree"

// Match is a resolved heading with its address in the tree. Path is the
// heading's own position at every depth, which differs from the selector
// indices when a range widened the candidate set above it.
type Match struct {
	Heading *doctree.Heading
	Path    []int
}

// Resolve evaluates every selector against the forest and returns the
// matches in selector order. The first out-of-range index aborts the
// whole query.
func Resolve(forest []*doctree.Heading, selectors []Selector) ([]Match, error) {
	var matches []Match
	for _, sel := range selectors {
		m, err := resolveSelector(forest, sel)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m...)
	}
	return matches, nil
}

func resolveSelector(forest []*doctree.Heading, sel Selector) ([]Match, error) {
	candidates := make([]Match, len(forest))
	for i, h := range forest {
		candidates[i] = Match{Heading: h, Path: []int{i + 1}}
	}

	for depth, comp := range sel {
		selected := make([]Match, 0, len(comp))
		for _, idx := range comp {
			if idx < 1 || idx > len(candidates) {
				return nil, &IndexOutOfRangeError{
					Index:     idx,
					Path:      sel[:depth+1].String(),
					Available: len(candidates),
				}
			}
			selected = append(selected, candidates[idx-1])
		}

		if depth == len(sel)-1 {
			return selected, nil
		}

		var next []Match
		for _, m := range selected {
			for j, child := range m.Heading.Children {
				next = append(next, Match{Heading: child, Path: appendPath(m.Path, j+1)})
			}
		}
		candidates = next
	}
	return nil, nil
}

// appendPath copies so sibling matches never share a backing array.
func appendPath(prefix []int, idx int) []int {
	out := make([]int, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, idx)
}

// FindSections returns the headings selected by the query in selector
// order. The result may contain duplicates and overlapping sections.
func FindSections(forest []*doctree.Heading, selectors []Selector) ([]*doctree.Heading, error) {
	matches, err := Resolve(forest, selectors)
	if err != nil {
		return nil, err
	}
	out := make([]*doctree.Heading, len(matches))
	for i, m := range matches {
		out[i] = m.Heading
	}
	return out, nil
}
