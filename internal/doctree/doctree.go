package doctree

// Document is a parsed source document reduced to its heading markers.
type Document struct {
	Title   string   // Document title (from metadata or filename)
	Source  []byte   // Bytes that marker offsets index into
	Markers []Marker // Headings in document order
}

// Marker is one heading as found by a parser, before nesting.
type Marker struct {
	Level     int    // 1 = top-level
	Text      string // Trimmed inline heading text
	StartByte int    // Offset of the heading's first byte in Source
}

// Heading is a node in the section tree. Its span [StartByte, EndByte)
// covers the heading line and everything up to the next heading of the
// same or shallower level.
type Heading struct {
	Level     int
	Text      string
	StartByte int
	EndByte   int
	Children  []*Heading
}

// Len returns the size of the section in bytes.
func (h *Heading) Len() int {
	return h.EndByte - h.StartByte
}

// Tree builds the heading forest for the document.
func (d *Document) Tree() []*Heading {
	return BuildTree(d.Markers, len(d.Source))
}

// Section returns the bytes of a heading's section.
func (d *Document) Section(h *Heading) []byte {
	return d.Source[h.StartByte:h.EndByte]
}

// BuildTree nests flat markers into a forest. docEnd closes every section
// that is not followed by a heading of equal or shallower level.
func BuildTree(markers []Marker, docEnd int) []*Heading {
	if len(markers) == 0 {
		return nil
	}

	headings := make([]*Heading, len(markers))
	for i, m := range markers {
		end := docEnd
		for j := i + 1; j < len(markers); j++ {
			if markers[j].Level <= m.Level {
				end = markers[j].StartByte
				break
			}
		}
		headings[i] = &Heading{
			Level:     m.Level,
			Text:      m.Text,
			StartByte: m.StartByte,
			EndByte:   end,
		}
	}

	// Root is level 0; all h1+ nest under it.
	root := &Heading{}
	stack := []*Heading{root}
	for _, h := range headings {
		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, h)
		stack = append(stack, h)
	}

	return root.Children
}

// Walk visits every heading depth-first in document order. fn receives
// the 1-based index path of the heading; returning false skips its
// children.
func Walk(forest []*Heading, fn func(h *Heading, path []int) bool) {
	var walk func([]*Heading, []int)
	walk = func(nodes []*Heading, prefix []int) {
		for i, h := range nodes {
			path := append(prefix[:len(prefix):len(prefix)], i+1)
			if fn(h, path) && len(h.Children) > 0 {
				walk(h.Children, path)
			}
		}
	}
	walk(forest, nil)
}

// Flatten returns all headings in document order.
func Flatten(forest []*Heading) []*Heading {
	var out []*Heading
	Walk(forest, func(h *Heading, _ []int) bool {
		out = append(out, h)
		return true
	})
	return out
}
