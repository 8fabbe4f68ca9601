package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdquery/internal/doctree"
)

const sampleMarkdown = `# Section 1

Some text in section 1.

## Section 1.1

Content of 1.1.

## Section 1.2

Content of 1.2.

### Section 1.2.1

Content of 1.2.1.

# Section 2

Content of section 2.

## Section 2.1

Content of 2.1

## Section 2.2

Content of 2.2
`

// sampleForest builds the heading tree with a line scanner so these
// tests do not depend on a markdown parser.
func sampleForest(t *testing.T) []*doctree.Heading {
	t.Helper()
	var markers []doctree.Marker
	offset := 0
	for _, line := range strings.SplitAfter(sampleMarkdown, "\n") {
		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			markers = append(markers, doctree.Marker{
				Level:     level,
				Text:      strings.TrimSpace(line[level:]),
				StartByte: offset,
			})
		}
		offset += len(line)
	}
	return doctree.BuildTree(markers, len(sampleMarkdown))
}

func texts(hs []*doctree.Heading) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Text
	}
	return out
}

func find(t *testing.T, forest []*doctree.Heading, q string) ([]*doctree.Heading, error) {
	t.Helper()
	sels, err := ParseQuery(q)
	require.NoError(t, err)
	return FindSections(forest, sels)
}

func TestFindSections(t *testing.T) {
	forest := sampleForest(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"1.2.1", []string{"Section 1.2.1"}},
		{"1.1,2.2", []string{"Section 1.1", "Section 2.2"}},
		{"1.1..2", []string{"Section 1.1", "Section 1.2"}},
		{"1.1..2,2.2", []string{"Section 1.1", "Section 1.2", "Section 2.2"}},
		{"2,1", []string{"Section 2", "Section 1"}},
		{"1,1.1", []string{"Section 1", "Section 1.1"}},
		{"1..2", []string{"Section 1", "Section 2"}},
		// Children of both top-level sections form one candidate list:
		// 1.1, 1.2, 2.1, 2.2.
		{"1..2.3", []string{"Section 2.1"}},
		{"1..2.1..4", []string{"Section 1.1", "Section 1.2", "Section 2.1", "Section 2.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := find(t, forest, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestFindSections_IndexOutOfRange(t *testing.T) {
	forest := sampleForest(t)

	tests := []struct {
		query     string
		index     int
		path      string
		available int
	}{
		{"3", 3, "3", 2},
		{"1.3", 3, "1.3", 2},
		{"1.2.2", 2, "1.2.2", 1},
		{"1.1.1", 1, "1.1.1", 0},
		{"2.1..3", 3, "2.1..3", 2},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := find(t, forest, tt.query)
			var idxErr *IndexOutOfRangeError
			require.True(t, errors.As(err, &idxErr), "expected IndexOutOfRangeError, got %v", err)
			assert.Equal(t, tt.index, idxErr.Index)
			assert.Equal(t, tt.path, idxErr.Path)
			assert.Equal(t, tt.available, idxErr.Available)
			assert.Contains(t, err.Error(), "index")
		})
	}
}

func TestFindSections_FailFastAcrossSelectors(t *testing.T) {
	forest := sampleForest(t)
	got, err := find(t, forest, "1,2,9")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestFindSections_EmptyForest(t *testing.T) {
	sels, err := ParseQuery("1")
	require.NoError(t, err)
	_, err = FindSections(nil, sels)
	var idxErr *IndexOutOfRangeError
	assert.True(t, errors.As(err, &idxErr))
}

func TestResolve_TreePaths(t *testing.T) {
	forest := sampleForest(t)
	sels, err := ParseQuery("1..2.3,1.2.1")
	require.NoError(t, err)

	matches, err := Resolve(forest, sels)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The selector reached 2.1 as the third candidate, but its address in
	// the tree is 2.1.
	assert.Equal(t, "Section 2.1", matches[0].Heading.Text)
	assert.Equal(t, []int{2, 1}, matches[0].Path)
	assert.Equal(t, []int{1, 2, 1}, matches[1].Path)
}
