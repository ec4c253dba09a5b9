package services

import "fmt"

// ParseError reports a failure to turn one raw ingredient line into
// structured fields. The raw line is carried so batch failures name the
// offending input.
type ParseError struct {
	Line  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse ingredient %q: %v", e.Line, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// MatchError reports a failure to resolve a parsed ingredient name to a
// catalog entry.
type MatchError struct {
	Name  string
	Cause error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("failed to match ingredient %q: %v", e.Name, e.Cause)
}

func (e *MatchError) Unwrap() error {
	return e.Cause
}
