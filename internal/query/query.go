// Package query parses section queries and resolves them against a
// heading tree.
//
// A query is a comma-separated union of selectors. Each selector is a
// dotted path of 1-based indices, one per tree depth, where any
// component may be an inclusive range:
//
//	1.3.2,1.3.4..5,2
package query

import (
	"strconv"
	"strings"
)

// Component is one dotted path segment expanded to its indices.
type Component []int

// String renders the component the way it is written in a query.
func (c Component) String() string {
	switch len(c) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(c[0])
	}
	return strconv.Itoa(c[0]) + ".." + strconv.Itoa(c[len(c)-1])
}

// Selector is one dotted path expression.
type Selector []Component

func (s Selector) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, ".")
}

// Limits bounds the size of a parsed query. Zero values mean unlimited.
type Limits struct {
	MaxSelectors  int // Comma-separated selectors per query
	MaxRangeWidth int // Indices a single range component may expand to
}

// ParseQuery parses a query string into selectors.
func ParseQuery(q string) ([]Selector, error) {
	return ParseQueryWithLimits(q, Limits{})
}

// ParseQueryWithLimits parses a query string, rejecting queries larger
// than lim allows before expanding any ranges.
func ParseQueryWithLimits(q string, lim Limits) ([]Selector, error) {
	parts := strings.Split(q, ",")
	if lim.MaxSelectors > 0 && len(parts) > lim.MaxSelectors {
		return nil, &LimitError{What: "selector", Got: len(parts), Limit: lim.MaxSelectors}
	}

	selectors := make([]Selector, 0, len(parts))
	for _, part := range parts {
		sel, err := parseSelector(strings.TrimSpace(part), lim)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

func parseSelector(s string, lim Limits) (Selector, error) {
	if s == "" {
		return nil, &SyntaxError{Selector: s, Reason: "empty selector"}
	}

	var sel Selector
	rest := s
	for {
		tok, next, more := nextComponent(rest)
		comp, err := parseComponent(tok, lim)
		if err != nil {
			if se, ok := err.(*SyntaxError); ok {
				se.Selector = s
			}
			return nil, err
		}
		sel = append(sel, comp)
		if !more {
			return sel, nil
		}
		rest = next
	}
}

// nextComponent splits off the text before the first path separator. A
// ".." pair is the range operator and never separates components.
func nextComponent(s string) (tok, rest string, more bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '.' {
			i++
			continue
		}
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func parseComponent(tok string, lim Limits) (Component, error) {
	if tok == "" {
		return nil, &SyntaxError{Reason: "empty component"}
	}

	lo, hi, isRange := strings.Cut(tok, "..")
	if !isRange {
		n, err := parseIndex(tok)
		if err != nil {
			return nil, err
		}
		return Component{n}, nil
	}

	if strings.Contains(hi, "..") {
		return nil, &SyntaxError{Component: tok, Reason: "malformed range"}
	}
	start, err := parseIndex(lo)
	if err != nil {
		err.(*SyntaxError).Component = tok
		return nil, err
	}
	end, err := parseIndex(hi)
	if err != nil {
		err.(*SyntaxError).Component = tok
		return nil, err
	}
	if end < start {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	width := end - start + 1
	if lim.MaxRangeWidth > 0 && width > lim.MaxRangeWidth {
		return nil, &LimitError{What: "range width", Got: width, Limit: lim.MaxRangeWidth}
	}
	comp := make(Component, 0, width)
	for i := start; i <= end; i++ {
		comp = append(comp, i)
	}
	return comp, nil
}

func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, &SyntaxError{Component: s, Reason: "missing index"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, &SyntaxError{Component: s, Reason: "not an integer"}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &SyntaxError{Component: s, Reason: "index too large"}
	}
	if n == 0 {
		return 0, &SyntaxError{Component: s, Reason: "indices are 1-based"}
	}
	return n, nil
}
