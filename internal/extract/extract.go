// Package extract runs a section query end to end: build the heading
// tree, parse and resolve the query, merge the matched spans.
package extract

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
	"github.com/dgallion1/mdquery/internal/query"
)

// Options configures a single extraction.
type Options struct {
	Limits query.Limits

	// Forest is a prebuilt tree for the document. When nil it is built
	// from the document's markers.
	Forest []*doctree.Heading
}

// Section describes one matched heading.
type Section struct {
	Path      string `json:"path"`
	Level     int    `json:"level"`
	Text      string `json:"text"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
}

// Result holds the matches of a query and the merged byte spans to output.
type Result struct {
	Sections []Section    `json:"sections"`
	Spans    []query.Span `json:"spans"`
}

// Extract evaluates q against doc.
func Extract(doc *doctree.Document, q string, opts Options) (*Result, error) {
	sels, err := query.ParseQueryWithLimits(q, opts.Limits)
	if err != nil {
		return nil, err
	}

	forest := opts.Forest
	if forest == nil {
		forest = doc.Tree()
	}

	matches, err := query.Resolve(forest, sels)
	if err != nil {
		return nil, err
	}

	res := &Result{Sections: make([]Section, 0, len(matches))}
	headings := make([]*doctree.Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, m.Heading)
		res.Sections = append(res.Sections, Section{
			Path:      dottedPath(m.Path),
			Level:     m.Heading.Level,
			Text:      m.Heading.Text,
			StartByte: m.Heading.StartByte,
			EndByte:   m.Heading.EndByte,
		})
	}
	res.Spans = query.MergeSections(headings)
	return res, nil
}

// WriteTo writes the merged spans of src to w in order.
func (r *Result) WriteTo(w io.Writer, src []byte) (int64, error) {
	var total int64
	for _, sp := range r.Spans {
		n, err := w.Write(src[sp.Start:sp.End])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the concatenated merged spans of src.
func (r *Result) Bytes(src []byte) []byte {
	var buf bytes.Buffer
	r.WriteTo(&buf, src)
	return buf.Bytes()
}

// Run extracts q from doc without limits and writes the result to w.
func Run(w io.Writer, doc *doctree.Document, q string) error {
	res, err := Extract(doc, q, Options{})
	if err != nil {
		return err
	}
	_, err = res.WriteTo(w, doc.Source)
	return err
}

func dottedPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}
