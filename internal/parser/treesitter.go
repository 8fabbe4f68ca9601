package parser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
	sitter "github.com/smacker/go-tree-sitter"
	tsmarkdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
)

// Node types of the tree-sitter markdown block grammar.
const (
	nodeATXHeading    = "atx_heading"
	nodeSetextHeading = "setext_heading"
	nodeSetextH1      = "setext_h1_underline"
	nodeInline        = "inline"
	nodeParagraph     = "paragraph"
)

// TreeSitterParser handles Markdown files using the tree-sitter block
// grammar. It is not safe for concurrent use.
type TreeSitterParser struct {
	parser *sitter.Parser
}

// NewTreeSitterParser creates a parser with the markdown grammar loaded.
func NewTreeSitterParser() *TreeSitterParser {
	p := sitter.NewParser()
	p.SetLanguage(tsmarkdown.GetLanguage())
	return &TreeSitterParser{parser: p}
}

func (p *TreeSitterParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tree, err := p.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	d := &doctree.Document{
		Title:  titleFromFilename(filename),
		Source: src,
	}
	for _, n := range findHeadings(root) {
		d.Markers = append(d.Markers, doctree.Marker{
			Level:     tsHeadingLevel(n, src),
			Text:      tsHeadingText(n, src),
			StartByte: int(n.StartByte()),
		})
	}

	// The root ends where the grammar stopped reading; trailing bytes
	// past it belong to no section.
	if end := int(root.EndByte()); end < len(src) {
		d.Source = src[:end]
	}
	return d, nil
}

// findHeadings collects heading nodes in document order without
// descending into them.
func findHeadings(n *sitter.Node) []*sitter.Node {
	switch n.Type() {
	case nodeATXHeading, nodeSetextHeading:
		return []*sitter.Node{n}
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, findHeadings(n.Child(i))...)
	}
	return out
}

func tsHeadingLevel(n *sitter.Node, src []byte) int {
	if n.Type() == nodeSetextHeading {
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == nodeSetextH1 {
				return 1
			}
		}
		return 2
	}
	if n.ChildCount() == 0 {
		return 1
	}
	marker := n.Child(0).Content(src)
	if level := strings.Count(marker, "#"); level > 0 {
		return level
	}
	return 1
}

func tsHeadingText(n *sitter.Node, src []byte) string {
	content := n.ChildByFieldName("heading_content")
	if content == nil {
		for i := 0; i < int(n.ChildCount()); i++ {
			if t := n.Child(i).Type(); t == nodeInline || t == nodeParagraph {
				content = n.Child(i)
				break
			}
		}
	}
	if content == nil {
		return ""
	}
	var parts []string
	for _, line := range strings.Split(content.Content(src), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(parts, " ")
	if n.Type() == nodeATXHeading {
		text = atxClosing.ReplaceAllString(text, "")
	}
	return text
}

// atxClosing matches an optional closing sequence of an ATX heading,
// which must be separated from the text by whitespace.
var atxClosing = regexp.MustCompile(`(?:^|[ \t]+)#+[ \t]*$`)
