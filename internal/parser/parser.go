package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdquery/internal/doctree"
)

// Parser converts raw document bytes into a Document with heading markers.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Markdown backends.
const (
	BackendGoldmark   = "goldmark"
	BackendTreeSitter = "treesitter"
)

// Options selects parser behavior for ForFile.
type Options struct {
	Backend           string // Markdown backend; defaults to goldmark
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ValidBackend reports whether name is a known markdown backend.
func ValidBackend(name string) bool {
	return name == "" || name == BackendGoldmark || name == BackendTreeSitter
}

// Markdown returns the markdown parser for the given backend.
func Markdown(backend string) (Parser, error) {
	switch backend {
	case "", BackendGoldmark:
		return &MarkdownParser{}, nil
	case BackendTreeSitter:
		return NewTreeSitterParser(), nil
	default:
		return nil, fmt.Errorf("unknown markdown backend: %q", backend)
	}
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return Markdown(opts.Backend)
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		md, err := Markdown(opts.Backend)
		if err != nil {
			return nil, err
		}
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext, Markdown: md}, nil
	case ".docx":
		md, err := Markdown(opts.Backend)
		if err != nil {
			return nil, err
		}
		return &DOCXParser{Markdown: md}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
