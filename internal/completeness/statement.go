// Package completeness defines the completeness statement: a pattern of
// triples asserted to be complete in a knowledge graph, scoped by a
// condition, together with its SPARQL CONSTRUCT form.
package completeness

import (
	"encoding/json"
	"slices"

	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/queryir"
	"github.com/roach88/csgen/internal/querysparql"
	"github.com/roach88/csgen/internal/sparql"
)

// QueryParser turns query text into a structured query.
// sparql.Parser is the default implementation.
type QueryParser interface {
	Parse(text string) (*sparql.Query, error)
}

// Statement is a completeness statement.
//
// Statements are values: accessors return copies and there are no
// setters, so a Statement can be shared freely between goroutines.
// Neither pattern nor condition is ever nil.
//
// Every triple must have all three terms. A statement with a nil term is
// invalid: ToQueryString still renders it, ToQuery reports a
// *sparql.ParseError and ID panics.
type Statement struct {
	pattern   ir.Pattern
	condition ir.Pattern
}

// New creates a Statement from a pattern and a condition. Both are copied.
// No validation is performed; empty inputs are accepted.
func New(pattern, condition ir.Pattern) Statement {
	return Statement{
		pattern:   pattern.Clone(),
		condition: condition.Clone(),
	}
}

// FromTriples creates a Statement from plain triple slices.
func FromTriples(pattern, condition []ir.TriplePattern) Statement {
	return New(ir.Pattern(pattern), ir.Pattern(condition))
}

// Pattern returns a copy of the statement's pattern.
func (s Statement) Pattern() ir.Pattern {
	return s.pattern.Clone()
}

// Condition returns a copy of the statement's condition.
func (s Statement) Condition() ir.Pattern {
	return s.condition.Clone()
}

// WithPattern returns a copy of s with its pattern replaced.
func (s Statement) WithPattern(pattern ir.Pattern) Statement {
	return New(pattern, s.condition)
}

// WithCondition returns a copy of s with its condition replaced.
func (s Statement) WithCondition(condition ir.Pattern) Statement {
	return New(s.pattern, condition)
}

// BodyAsTriplePatterns returns the pattern triples followed by the
// condition triples.
func (s Statement) BodyAsTriplePatterns() []ir.TriplePattern {
	return s.pattern.Concat(s.condition)
}

// UniquePredicateList returns the distinct string forms of every predicate
// in the body, sorted in ascending code-point order.
func (s Statement) UniquePredicateList() []string {
	preds := make([]string, 0, s.Length())
	for _, t := range s.BodyAsTriplePatterns() {
		preds = append(preds, ir.Label(t.Predicate))
	}
	slices.Sort(preds)
	return slices.Compact(preds)
}

// PatternLength returns the number of pattern triples.
func (s Statement) PatternLength() int {
	return len(s.pattern)
}

// ConditionLength returns the number of condition triples.
func (s Statement) ConditionLength() int {
	return len(s.condition)
}

// Length returns PatternLength() + ConditionLength().
func (s Statement) Length() int {
	return len(s.pattern) + len(s.condition)
}

// Construct returns the statement as a query IR node.
func (s Statement) Construct() queryir.Construct {
	return queryir.NewStatementConstruct(s.Pattern(), s.Condition())
}

// ToQueryString renders the statement as a SPARQL CONSTRUCT query whose
// template is the pattern and whose WHERE clause is the pattern followed
// by the condition.
//
// For pattern [t1, t2] and condition [c1]:
//
//	CONSTRUCT {  t1 . t2 .  } WHERE {  t1 . t2 .  c1 .  }
//
// The text is deterministic and is not validated; see ToQuery.
func (s Statement) ToQueryString() string {
	return querysparql.CompileConstruct(s.Construct())
}

// String returns ToQueryString().
func (s Statement) String() string {
	return s.ToQueryString()
}

// ToQuery parses ToQueryString() with the default parser.
func (s Statement) ToQuery() (*sparql.Query, error) {
	return s.ToQueryWith(sparql.Parser{})
}

// ToQueryWith parses ToQueryString() with p. Parser errors are returned
// unchanged.
func (s Statement) ToQueryWith(p QueryParser) (*sparql.Query, error) {
	return p.Parse(s.ToQueryString())
}

// ID returns the content hash of the statement. Equal statements have
// equal IDs.
func (s Statement) ID() string {
	return ir.MustStatementHash(s.pattern, s.condition)
}

// Equal reports whether two statements have the same triples in the same
// order.
func (s Statement) Equal(other Statement) bool {
	return slices.Equal(s.pattern, other.pattern) && slices.Equal(s.condition, other.condition)
}

// HasPlaceholders reports whether any body term is a template hole.
func (s Statement) HasPlaceholders() bool {
	for _, t := range s.BodyAsTriplePatterns() {
		for _, term := range t.Terms() {
			if ir.IsPlaceholder(term) {
				return true
			}
		}
	}
	return false
}

type statementJSON struct {
	Pattern   ir.Pattern `json:"pattern"`
	Condition ir.Pattern `json:"condition"`
}

// MarshalJSON implements json.Marshaler.
func (s Statement) MarshalJSON() ([]byte, error) {
	return json.Marshal(statementJSON{
		Pattern:   s.pattern.Clone(),
		Condition: s.condition.Clone(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Statement) UnmarshalJSON(data []byte) error {
	var raw statementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = New(raw.Pattern, raw.Condition)
	return nil
}
