// Package querysparql compiles QueryIR to SPARQL 1.1 query text.
package querysparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/queryir"
)

// Compiler compiles QueryIR to SPARQL text.
//
// Output is byte-for-byte deterministic: the same query always compiles to
// the same string. IRIs are emitted in full between angle brackets and
// literals are emitted verbatim.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile converts a QueryIR query to SPARQL text.
func (c *Compiler) Compile(q queryir.Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Construct:
		return c.compileConstruct(query)
	case *queryir.Construct:
		return c.compileConstruct(*query)
	case queryir.SelectResources:
		return c.compileSelect(query)
	case *queryir.SelectResources:
		return c.compileSelect(*query)
	case queryir.CountInstances:
		return c.compileCount(query)
	case *queryir.CountInstances:
		return c.compileCount(*query)
	default:
		return "", fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompileConstruct renders a Construct. It cannot fail for patterns whose
// terms are all non-nil.
//
// Format:
//
//	"CONSTRUCT { " + block(template) + " } WHERE { " + block(where...) + " }"
//
// where block(p) is " " followed by "s p o . " for every triple of p.
func CompileConstruct(q queryir.Construct) string {
	var sb strings.Builder
	sb.WriteString("CONSTRUCT { ")
	writeBlock(&sb, q.Template)
	sb.WriteString(" } WHERE { ")
	for _, p := range q.Where {
		writeBlock(&sb, p)
	}
	sb.WriteString(" }")
	return sb.String()
}

func writeBlock(sb *strings.Builder, p ir.Pattern) {
	sb.WriteByte(' ')
	for _, t := range p {
		sb.WriteString(t.String())
		sb.WriteString(" . ")
	}
}

func (c *Compiler) compileConstruct(q queryir.Construct) (string, error) {
	if err := checkTerms("template", q.Template); err != nil {
		return "", err
	}
	for i, p := range q.Where {
		if err := checkTerms(fmt.Sprintf("where[%d]", i), p); err != nil {
			return "", err
		}
	}
	return CompileConstruct(q), nil
}

func checkTerms(where string, p ir.Pattern) error {
	for i, t := range p {
		if t.Subject == nil || t.Predicate == nil || t.Object == nil {
			return fmt.Errorf("compile %s: triple %d has a missing term", where, i)
		}
	}
	return nil
}

// compileSelect renders SELECT ?x WHERE {?x a <class>} [LIMIT n] [OFFSET k].
func (c *Compiler) compileSelect(q queryir.SelectResources) (string, error) {
	if q.Class == "" {
		return "", fmt.Errorf("compile select: class IRI is empty")
	}
	if err := ir.CheckIRIRef(q.Class); err != nil {
		return "", fmt.Errorf("compile select: %w", err)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return "", fmt.Errorf("compile select: LIMIT and OFFSET must be non-negative (got %d, %d)", q.Limit, q.Offset)
	}

	v := "?" + q.ResourceVar()
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(v)
	sb.WriteString(" WHERE {")
	sb.WriteString(typePattern(v, q.Class))
	sb.WriteString("}")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(q.Offset))
	}
	return sb.String(), nil
}

// compileCount renders SELECT (COUNT(?x) AS ?total) WHERE {?x a <class>}.
func (c *Compiler) compileCount(q queryir.CountInstances) (string, error) {
	if q.Class == "" {
		return "", fmt.Errorf("compile count: class IRI is empty")
	}
	if err := ir.CheckIRIRef(q.Class); err != nil {
		return "", fmt.Errorf("compile count: %w", err)
	}

	v := "?" + q.ResourceVar()
	return fmt.Sprintf("SELECT (COUNT(%s) AS ?%s) WHERE {%s}",
		v, q.ResultVar(), typePattern(v, q.Class)), nil
}

func typePattern(v, class string) string {
	return v + " a " + ir.NewIRI(class).String()
}
