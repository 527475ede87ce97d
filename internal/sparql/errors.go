package sparql

import (
	"errors"
	"fmt"
)

// ParseError reports a syntax error in query text.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sparql: parse error at %d:%d: %s", e.Line, e.Col, e.Message)
}

// MalformedTermError reports a term whose surface form is invalid, such as
// an unterminated string literal, a bad escape sequence, a datatype marker
// without an IRI, or an IRI containing forbidden characters.
type MalformedTermError struct {
	Term   string // Offending source text
	Line   int
	Col    int
	Reason string
}

func (e *MalformedTermError) Error() string {
	return fmt.Sprintf("sparql: malformed term %q at %d:%d: %s", e.Term, e.Line, e.Col, e.Reason)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsMalformedTerm reports whether err is or wraps a *MalformedTermError.
func IsMalformedTerm(err error) bool {
	var me *MalformedTermError
	return errors.As(err, &me)
}
