package endpoint

import (
	"io"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"

	"github.com/roach88/csgen/internal/ir"
)

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

// Results is a decoded application/sparql-results+json document.
//
// Bindings whose value is not a valid RDF term (an IRI with characters
// that cannot appear in <...>, a malformed language tag) are dropped
// during decoding.
type Results struct {
	vars      []string
	solutions []map[string]rdf.Term
}

// NewResults builds Results from projected variables and solutions.
func NewResults(vars []string, solutions ...map[string]rdf.Term) *Results {
	return &Results{vars: vars, solutions: solutions}
}

// decodeResults reads a SPARQL JSON results document.
func decodeResults(r io.Reader) (*Results, error) {
	res, err := sparql.ParseJSON(r)
	if err != nil {
		return nil, err
	}
	return &Results{vars: res.Head.Vars, solutions: res.Solutions()}, nil
}

// Vars returns the projected variable names.
func (r *Results) Vars() []string {
	return r.vars
}

// Len returns the number of solutions.
func (r *Results) Len() int {
	return len(r.solutions)
}

// Column returns the values bound to name, one per solution that binds it,
// in solution order. IRIs are returned without brackets and literals as
// their lexical value.
func (r *Results) Column(name string) []string {
	values := make([]string, 0, len(r.solutions))
	for _, row := range r.solutions {
		if t, ok := row[name]; ok {
			values = append(values, t.String())
		}
	}
	return values
}

// Terms returns the terms bound to name in solution order. Blank nodes have
// no term form in csgen patterns and are skipped.
func (r *Results) Terms(name string) []ir.Term {
	terms := make([]ir.Term, 0, len(r.solutions))
	for _, row := range r.solutions {
		if t := Term(row[name]); t != nil {
			terms = append(terms, t)
		}
	}
	return terms
}

// Term converts a result term to a pattern term. Blank nodes and nil
// return nil. Plain and xsd:string literals both become plain literals.
func Term(t rdf.Term) ir.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return ir.NewIRI(v.String())
	case rdf.Literal:
		switch dt := v.DataType.String(); {
		case v.Lang() != "":
			return ir.NewLangLiteral(v.String(), v.Lang())
		case dt == "" || dt == xsdString:
			return ir.NewStringLiteral(v.String())
		default:
			return ir.NewTypedLiteral(v.String(), dt)
		}
	default:
		return nil
	}
}
