package completeness

import "github.com/roach88/csgen/internal/ir"

// Builder accumulates triples for a Statement.
//
//	s := completeness.NewBuilder().
//		Pattern(ir.TypeTriple(x, "http://dbpedia.org/ontology/Song")).
//		Condition(cond).
//		Build()
type Builder struct {
	pattern   ir.Pattern
	condition ir.Pattern
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Pattern appends triples to the pattern.
func (b *Builder) Pattern(triples ...ir.TriplePattern) *Builder {
	b.pattern = append(b.pattern, triples...)
	return b
}

// Condition appends triples to the condition.
func (b *Builder) Condition(triples ...ir.TriplePattern) *Builder {
	b.condition = append(b.condition, triples...)
	return b
}

// Build returns a new Statement. The builder can keep being used; later
// additions do not affect statements already built.
func (b *Builder) Build() Statement {
	return New(b.pattern, b.condition)
}
