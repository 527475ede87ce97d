// Package instantiate binds the hole of a completeness statement template to
// concrete resources.
package instantiate

import (
	"strings"

	"github.com/roach88/csgen/internal/completeness"
	"github.com/roach88/csgen/internal/ir"
)

// Instantiator substitutes resources into templates.
//
// A term is a hole when it is an ir.Placeholder, or an IRI whose value
// contains Sentinel. A hole is replaced in full by the resource IRI; the
// sentinel is never spliced into the surrounding IRI text.
type Instantiator struct {
	// Sentinel marks legacy holes inside IRIs. Empty disables IRI matching,
	// leaving only Placeholder terms as holes.
	Sentinel string

	// SubstituteCondition keeps the template condition and substitutes it
	// like the pattern. When false the condition is dropped and every
	// instantiated statement has an empty condition.
	SubstituteCondition bool

	// SubstitutePredicates applies substitution to predicates as well.
	// When false predicates are copied unchanged.
	SubstitutePredicates bool
}

// Option configures an Instantiator.
type Option func(*Instantiator)

// WithSentinel sets the sentinel substring.
func WithSentinel(sentinel string) Option {
	return func(i *Instantiator) { i.Sentinel = sentinel }
}

// WithConditionSubstitution enables or disables condition substitution.
func WithConditionSubstitution(enabled bool) Option {
	return func(i *Instantiator) { i.SubstituteCondition = enabled }
}

// WithPredicateSubstitution enables or disables predicate substitution.
func WithPredicateSubstitution(enabled bool) Option {
	return func(i *Instantiator) { i.SubstitutePredicates = enabled }
}

// New creates an Instantiator with the default sentinel.
func New(opts ...Option) *Instantiator {
	i := &Instantiator{Sentinel: ir.DefaultSentinel}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IsHole reports whether term would be replaced by SubstituteTerm.
func (i *Instantiator) IsHole(term ir.Term) bool {
	switch t := term.(type) {
	case ir.Placeholder:
		return true
	case ir.IRI:
		return i.Sentinel != "" && strings.Contains(t.Value, i.Sentinel)
	default:
		return false
	}
}

// SubstituteTerm returns the resource IRI if term is a hole and term
// unchanged otherwise. Variables and literals are never holes, even when
// their text contains the sentinel.
func (i *Instantiator) SubstituteTerm(term ir.Term, resource string) ir.Term {
	if i.IsHole(term) {
		return ir.NewIRI(resource)
	}
	return term
}

// SubstituteTriple substitutes subject and object, and the predicate when
// SubstitutePredicates is set.
func (i *Instantiator) SubstituteTriple(t ir.TriplePattern, resource string) ir.TriplePattern {
	predicate := t.Predicate
	if i.SubstitutePredicates {
		predicate = i.SubstituteTerm(predicate, resource)
	}
	return ir.TriplePattern{
		Subject:   i.SubstituteTerm(t.Subject, resource),
		Predicate: predicate,
		Object:    i.SubstituteTerm(t.Object, resource),
	}
}

// SubstitutePattern returns a new pattern with every triple substituted.
func (i *Instantiator) SubstitutePattern(p ir.Pattern, resource string) ir.Pattern {
	out := make(ir.Pattern, len(p))
	for j, t := range p {
		out[j] = i.SubstituteTriple(t, resource)
	}
	return out
}

// Instantiate produces one statement per resource, in resource order.
//
// The result is never nil. A template without holes yields statements
// whose patterns equal the template pattern. The template is not modified
// and no output statement shares storage with it.
func (i *Instantiator) Instantiate(template completeness.Statement, resources []string) []completeness.Statement {
	out := make([]completeness.Statement, 0, len(resources))
	pattern := template.Pattern()
	condition := template.Condition()

	for _, resource := range resources {
		var cond ir.Pattern
		if i.SubstituteCondition {
			cond = i.SubstitutePattern(condition, resource)
		}
		out = append(out, completeness.New(i.SubstitutePattern(pattern, resource), cond))
	}
	return out
}

// CountPlaceholders returns the number of terms Instantiate would replace
// in template. Zero usually means the template was written with a
// different sentinel.
func (i *Instantiator) CountPlaceholders(template completeness.Statement) int {
	count := 0
	countPattern := func(p ir.Pattern) {
		for _, t := range p {
			if i.IsHole(t.Subject) {
				count++
			}
			if i.SubstitutePredicates && i.IsHole(t.Predicate) {
				count++
			}
			if i.IsHole(t.Object) {
				count++
			}
		}
	}
	countPattern(template.Pattern())
	if i.SubstituteCondition {
		countPattern(template.Condition())
	}
	return count
}
