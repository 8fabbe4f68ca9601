package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Selector
	}{
		{"single", "1", []Selector{{{1}}}},
		{"path", "3.2.1", []Selector{{{3}, {2}, {1}}}},
		{"multiple", "1,2,3", []Selector{{{1}}, {{2}}, {{3}}}},
		{"multiple paths", "1.2,3.4", []Selector{{{1}, {2}}, {{3}, {4}}}},
		{"range", "1..3", []Selector{{{1, 2, 3}}}},
		{"range in path", "1.2..4", []Selector{{{1}, {2, 3, 4}}}},
		{"range then path", "2..3.1", []Selector{{{2, 3}, {1}}}},
		{"single element range", "4..4", []Selector{{{4}}}},
		{"mixed", "1.2..3,4.1,5", []Selector{{{1}, {2, 3}}, {{4}, {1}}, {{5}}}},
		{"spaces around selectors", " 1.2 , 3 ", []Selector{{{1}, {2}}, {{3}}}},
		{"multi digit", "12.10..11", []Selector{{{12}, {10, 11}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuery_InvalidRange(t *testing.T) {
	_, err := ParseQuery("5..2")

	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr), "expected InvalidRangeError, got %v", err)
	assert.Equal(t, 5, rangeErr.Start)
	assert.Equal(t, 2, rangeErr.End)
	assert.Contains(t, err.Error(), "end of range cannot be smaller than start")
}

func TestParseQuery_SyntaxErrors(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"1.x",
		"1.",
		".1",
		"1..",
		"..2",
		"1...3",
		"1..2..3",
		"1,,2",
		"1,",
		"-1",
		"+1",
		"0",
		"1.0..2",
		"1. 2",
		"99999999999999999999999",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseQuery(in)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "ParseQuery(%q): expected SyntaxError, got %v", in, err)
		})
	}
}

func TestParseQuery_SyntaxErrorNamesSelector(t *testing.T) {
	_, err := ParseQuery("1.2,3.abc")
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "3.abc", syntaxErr.Selector)
	assert.Equal(t, "abc", syntaxErr.Component)
}

func TestParseQueryWithLimits(t *testing.T) {
	lim := Limits{MaxSelectors: 2, MaxRangeWidth: 10}

	_, err := ParseQueryWithLimits("1,2", lim)
	assert.NoError(t, err)

	_, err = ParseQueryWithLimits("1,2,3", lim)
	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, "selector", limitErr.What)

	_, err = ParseQueryWithLimits("1..10", lim)
	assert.NoError(t, err)

	_, err = ParseQueryWithLimits("1..1000000000", lim)
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, "range width", limitErr.What)
	assert.Equal(t, 1000000000, limitErr.Got)
}

func TestSelectorString(t *testing.T) {
	sels, err := ParseQuery("1.2..4.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2..4.3", sels[0].String())
}
