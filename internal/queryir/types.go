package queryir

import "github.com/roach88/csgen/internal/ir"

// Query represents an abstract SPARQL query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Construct is a SPARQL CONSTRUCT query.
//
// Semantics:
//
//	CONSTRUCT { <template> } WHERE { <where[0]> <where[1]> ... }
//
// Each pattern is rendered as a block: one leading space, then every
// triple followed by " . ". A completeness statement with pattern P and
// condition C compiles from:
//
//	Construct{Template: P, Where: []ir.Pattern{P, C}}
//
// which yields, for P = [t1, t2] and C = [c1]:
//
//	CONSTRUCT {  t1 . t2 .  } WHERE {  t1 . t2 .  c1 .  }
//
// Variables in Where that never appear in Template are allowed.
type Construct struct {
	Template ir.Pattern   // Triples produced per solution
	Where    []ir.Pattern // Graph pattern blocks, concatenated in order
}

func (Construct) queryNode() {}

// SelectResources lists instances of a class.
//
// Semantics:
//
//	SELECT ?<var> WHERE {?<var> a <class>} [LIMIT n] [OFFSET k]
//
// Limit 0 omits the LIMIT clause; Offset 0 omits the OFFSET clause.
// No ORDER BY is emitted: which instances an endpoint returns for a given
// LIMIT is endpoint-defined.
type SelectResources struct {
	Var    string // Projected variable name without '?' (default "x")
	Class  string // Class IRI without angle brackets
	Limit  int    // Maximum rows (0 = unbounded)
	Offset int    // Rows to skip (0 = none)
}

func (SelectResources) queryNode() {}

// CountInstances counts the instances of a class.
//
// Semantics:
//
//	SELECT (COUNT(?<var>) AS ?<as>) WHERE {?<var> a <class>}
type CountInstances struct {
	Var   string // Counted variable without '?' (default "x")
	Class string // Class IRI without angle brackets
	As    string // Result variable without '?' (default "total")
}

func (CountInstances) queryNode() {}

// Default variable names used when a query leaves them empty.
const (
	DefaultResourceVar = "x"
	DefaultCountVar    = "total"
)

// ResourceVar returns the projected variable, defaulting to "x".
func (q SelectResources) ResourceVar() string {
	if q.Var == "" {
		return DefaultResourceVar
	}
	return q.Var
}

// ResourceVar returns the counted variable, defaulting to "x".
func (q CountInstances) ResourceVar() string {
	if q.Var == "" {
		return DefaultResourceVar
	}
	return q.Var
}

// ResultVar returns the result variable, defaulting to "total".
func (q CountInstances) ResultVar() string {
	if q.As == "" {
		return DefaultCountVar
	}
	return q.As
}

// NewStatementConstruct builds the Construct for a completeness statement.
func NewStatementConstruct(pattern, condition ir.Pattern) Construct {
	return Construct{
		Template: pattern,
		Where:    []ir.Pattern{pattern, condition},
	}
}
