package parser

import (
	"bytes"
	"strings"
)

// markdownWriter renders extracted heading/paragraph blocks as markdown
// for formats that have no byte-addressable source of their own.
type markdownWriter struct {
	buf bytes.Buffer
}

func (w *markdownWriter) Heading(level int, text string) {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	w.buf.WriteString(strings.Repeat("#", level))
	w.buf.WriteByte(' ')
	w.buf.WriteString(collapseSpace(text))
	w.buf.WriteString("\n\n")
}

func (w *markdownWriter) Paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		w.buf.WriteString(escapeBlockLine(line))
		w.buf.WriteByte('\n')
	}
	w.buf.WriteByte('\n')
}

func (w *markdownWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// escapeBlockLine keeps plain text from being read as a heading, a
// setext underline, or a code fence or HTML block that would swallow the
// headings after it.
func escapeBlockLine(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "#"),
		strings.HasPrefix(trimmed, "```"),
		strings.HasPrefix(trimmed, "~~~"),
		strings.HasPrefix(trimmed, "<"):
		return `\` + trimmed
	case strings.Trim(trimmed, "=") == "", strings.Trim(trimmed, "- ") == "":
		return `\` + trimmed
	}
	return line
}
