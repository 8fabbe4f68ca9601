package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	d := &doctree.Document{
		Title:  titleFromFilename(filename),
		Source: src,
	}

	// Goldmark keeps only content segments for headings, so the heading
	// line is located from its first segment. cursor is the start of the
	// line after the last source line of the previous block and bounds
	// the search for empty headings, which have no segment at all.
	cursor := 0
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			h, ok := c.(*ast.Heading)
			if !ok {
				if c.Type() == ast.TypeBlock {
					walk(c)
					cursor = max(cursor, blockEnd(c, src))
				}
				continue
			}

			start := headingStart(h, src, cursor)
			if start < 0 {
				continue
			}
			d.Markers = append(d.Markers, doctree.Marker{
				Level:     h.Level,
				Text:      headingText(h, src),
				StartByte: start,
			})
			cursor = max(cursor, nextLine(src, start))
		}
	}
	walk(doc)

	return d, nil
}

func headingStart(h *ast.Heading, src []byte, cursor int) int {
	if lines := h.Lines(); lines.Len() > 0 {
		return lineStart(src, lines.At(0).Start)
	}

	// Empty ATX heading such as "#" or "## ##".
	for pos := cursor; pos < len(src); pos = nextLine(src, pos) {
		m := atxOpener.FindSubmatch(bytes.TrimRight(src[pos:nextLine(src, pos)], "\r\n"))
		if m != nil && len(m[1]) == h.Level {
			return pos
		}
	}
	return -1
}

// atxOpener matches an ATX heading line behind any block quote or list
// item markers. Indentation is relative to those containers.
var atxOpener = regexp.MustCompile(`^(?:[ \t]*(?:>|(?:[-+*]|[0-9]{1,9}[.)])[ \t]))*[ \t]*(#{1,6})(?:[ \t]|$)`)

// blockEnd returns the start of the line after the last source line of
// a block or its descendants, or -1 when none carries source lines.
func blockEnd(n ast.Node, src []byte) int {
	end := -1
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		if stop := lines.At(lines.Len() - 1).Stop; stop > 0 && stop <= len(src) {
			end = nextLine(src, stop-1)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeBlock {
			end = max(end, blockEnd(c, src))
		}
	}
	return end
}

// headingText joins the raw inline source of the heading's lines.
func headingText(h *ast.Heading, src []byte) string {
	lines := h.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if t := strings.TrimSpace(string(seg.Value(src))); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// lineStart returns the offset of the first byte of the line containing pos.
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

// nextLine returns the offset just past the line containing pos.
func nextLine(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(src)
}
