package query

import (
	"sort"

	"github.com/dgallion1/mdquery/internal/doctree"
)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// MergeSections merges the spans of the given headings. The headings
// themselves are never modified.
func MergeSections(sections []*doctree.Heading) []Span {
	spans := make([]Span, len(sections))
	for i, h := range sections {
		spans[i] = Span{Start: h.StartByte, End: h.EndByte}
	}
	return MergeSpans(spans)
}

// MergeSpans sorts spans by start and merges those that overlap. Spans
// that only touch (next.Start == cur.End) stay separate. The input slice
// is not modified.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := make([]Span, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start < cur.End {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}
