package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each page becomes a level-1 section
// "Page N" of a synthesized markdown source, so top-level index N is
// always page N. It tries the Go
// library first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
	Markdown          Parser
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "mdquery-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	md := p.Markdown
	if md == nil {
		md = &MarkdownParser{}
	}
	d, err := md.Parse(bytes.NewReader(pagesToMarkdown(splitPages(text))), filename)
	if err != nil {
		return nil, err
	}
	d.Title = titleFromFilename(filename)
	return d, nil
}

// pagesToMarkdown emits a heading for every page, blank ones included,
// so later pages keep their position.
func pagesToMarkdown(pages []string) []byte {
	var w markdownWriter
	for i, page := range pages {
		w.Heading(1, fmt.Sprintf("Page %d", i+1))
		w.Paragraph(page)
	}
	return w.Bytes()
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if !page.V.IsNull() {
			if text, err := page.GetPlainText(nil); err == nil {
				buf.WriteString(text)
			}
		}
		buf.WriteString("\f") // Form feed ends each page, as pdftotext does.
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// splitPages splits on form feeds. Both extractors end every page, the
// last one included, with a form feed.
func splitPages(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\f"), "\f")
}
