// Package outline lists the addressable sections of a document so users
// can find the index path to query.
package outline

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dgallion1/mdquery/internal/doctree"
)

// Options controls outline construction.
type Options struct {
	MaxDepth int // 0 = unlimited
}

// Entry is one heading in the outline.
type Entry struct {
	Path       string   `json:"path"`
	Level      int      `json:"level"`
	Title      string   `json:"title"`
	Breadcrumb []string `json:"breadcrumb"`
	StartByte  int      `json:"start_byte"`
	EndByte    int      `json:"end_byte"`
	Bytes      int      `json:"bytes"`
	Tokens     int      `json:"tokens"`
}

// Depth is the number of components in the entry's path.
func (e Entry) Depth() int {
	return strings.Count(e.Path, ".") + 1
}

// Build walks forest depth-first. Paths are the query addresses of each
// heading; Bytes and Tokens measure the whole section including children.
func Build(doc *doctree.Document, forest []*doctree.Heading, opts Options) []Entry {
	var entries []Entry
	var crumbs []string
	doctree.Walk(forest, func(h *doctree.Heading, path []int) bool {
		crumbs = append(crumbs[:len(path)-1], h.Text)
		section := doc.Section(h)
		entries = append(entries, Entry{
			Path:       joinPath(path),
			Level:      h.Level,
			Title:      h.Text,
			Breadcrumb: append([]string(nil), crumbs[:len(path)-1]...),
			StartByte:  h.StartByte,
			EndByte:    h.EndByte,
			Bytes:      len(section),
			Tokens:     EstimateTokens(string(section)),
		})
		return opts.MaxDepth <= 0 || len(path) < opts.MaxDepth
	})
	return entries
}

func joinPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Render writes an indented table of entries.
func Render(w io.Writer, title string, entries []Entry) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("(no headings)"))
		return err
	}

	pathWidth, headWidth := 0, 0
	for _, e := range entries {
		pathWidth = max(pathWidth, len(e.Path))
		headWidth = max(headWidth, lipgloss.Width(heading(e)))
	}

	for _, e := range entries {
		path := pathStyle.Render(fmt.Sprintf("%-*s", pathWidth, e.Path))
		head := heading(e)
		pad := strings.Repeat(" ", headWidth-lipgloss.Width(head))
		size := dimStyle.Render(fmt.Sprintf("%9s  ~%s tok",
			humanize.Bytes(uint64(e.Bytes)), humanize.Comma(int64(e.Tokens))))
		if _, err := fmt.Fprintf(w, "%s  %s%s  %s\n", path, head, pad, size); err != nil {
			return err
		}
	}
	return nil
}

func heading(e Entry) string {
	return strings.Repeat("  ", e.Depth()-1) + e.Title
}

// RenderJSON writes entries as {"title": ..., "entries": [...]}.
func RenderJSON(w io.Writer, title string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Title   string  `json:"title"`
		Entries []Entry `json:"entries"`
	}{title, entries})
}
