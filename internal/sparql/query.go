// Package sparql parses the SPARQL fragment csgen itself produces: CONSTRUCT
// queries over basic graph patterns and SELECT queries that list or count
// class instances.
//
// The parser exists so that generated query text can be checked and turned
// back into structured triples. It is not a general SPARQL parser: there is
// no PREFIX, FILTER, OPTIONAL, UNION, property paths, or blank nodes.
package sparql

import "github.com/roach88/csgen/internal/ir"

// QueryForm identifies the top-level query form.
type QueryForm string

const (
	FormConstruct QueryForm = "CONSTRUCT"
	FormSelect    QueryForm = "SELECT"
)

// Projection is one item of a SELECT clause.
type Projection struct {
	Var       string // Projected or result variable without '?'
	Aggregate string // "COUNT" for (COUNT(?v) AS ?r), empty otherwise
	Arg       string // Aggregated variable without '?'
	Distinct  bool   // COUNT(DISTINCT ?v)
}

// Query is a parsed query.
type Query struct {
	Form QueryForm

	// Template is the CONSTRUCT template. Empty for SELECT.
	Template ir.Pattern

	// Where is the graph pattern of the WHERE clause.
	Where ir.Pattern

	// SELECT only.
	Distinct   bool
	Star       bool
	Projection []Projection

	// Limit and Offset are -1 when the clause is absent.
	Limit  int
	Offset int
}

// TemplateLen returns the number of triples in the CONSTRUCT template.
func (q *Query) TemplateLen() int {
	return len(q.Template)
}

// WhereLen returns the number of triples in the WHERE clause.
func (q *Query) WhereLen() int {
	return len(q.Where)
}

// ProjectedVars returns the variables a SELECT query binds, in order.
func (q *Query) ProjectedVars() []string {
	if q.Star {
		return q.Where.Variables()
	}
	vars := make([]string, len(q.Projection))
	for i, p := range q.Projection {
		vars[i] = p.Var
	}
	return vars
}
