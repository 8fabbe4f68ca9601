package query

import "fmt"

// SyntaxError reports a malformed selector component.
type SyntaxError struct {
	Selector  string // The comma-separated part containing the error
	Component string // The offending dot-separated component
	Reason    string
}

func (e *SyntaxError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("invalid query %q: %s", e.Selector, e.Reason)
	}
	return fmt.Sprintf("invalid query component %q in %q: %s", e.Component, e.Selector, e.Reason)
}

// InvalidRangeError reports a range whose end is smaller than its start.
type InvalidRangeError struct {
	Start int
	End   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %d..%d: end of range cannot be smaller than start", e.Start, e.End)
}

// IndexOutOfRangeError reports a selector index with no matching heading.
type IndexOutOfRangeError struct {
	Index     int    // 1-based index that was requested
	Path      string // Dotted path up to and including the failing component
	Available int    // Number of candidates at that depth
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for query part %q (%d available)", e.Index, e.Path, e.Available)
}

// LimitError reports a query that exceeds configured limits.
type LimitError struct {
	What  string
	Got   int
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("query exceeds %s limit: %d > %d", e.What, e.Got, e.Limit)
}
