package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Sections are addressed by <h1>..<h6>
// and extracted as the original HTML bytes.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	d := &doctree.Document{
		Title:  titleFromFilename(filename),
		Source: src,
	}

	// The tokenizer is used instead of html.Parse because the tree loses
	// source offsets. Raw token lengths tile the input, so a running sum
	// gives each token's byte offset.
	z := html.NewTokenizer(bytes.NewReader(src))
	offset := 0

	var (
		open    *doctree.Marker
		openTag string
		text    strings.Builder
		title   strings.Builder
		inTitle bool
	)

	closeHeading := func() {
		open.Text = collapseSpace(text.String())
		d.Markers = append(d.Markers, *open)
		open = nil
		text.Reset()
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse html: %w", err)
			}
			break
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if open == nil {
				if level := headingLevel(tag); level > 0 {
					open = &doctree.Marker{Level: level, StartByte: start}
					openTag = tag
				}
			}
			if tag == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if open != nil && tag == openTag {
				closeHeading()
			}
			if tag == "title" {
				inTitle = false
			}
		case html.TextToken:
			if open != nil {
				text.Write(z.Text())
			} else if inTitle {
				title.Write(z.Text())
			}
		}
	}
	if open != nil {
		closeHeading()
	}

	// Extract title from <title> tag if present.
	if t := collapseSpace(title.String()); t != "" {
		d.Title = t
	}

	return d, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
