// Package queryir provides an abstract query intermediate representation (IR)
// for the SPARQL queries csgen issues or emits.
//
// QueryIR is the boundary between the parts of csgen that decide WHAT to
// ask (completeness statements, resource resolution) and the backend that
// decides HOW the question is spelled:
//
//	[completeness.Statement] → [Query IR] → [querysparql] → SPARQL text
//	[endpoint.Resolver]      ↗
//
// QUERY FORMS:
//
//   - Construct(template, where...) - the executable form of a completeness
//     statement: the pattern is the template and the pattern followed by the
//     condition is the graph pattern
//   - SelectResources(var, class, limit, offset) - lists instances of a class
//   - CountInstances(var, class, as) - counts instances of a class
//
// EXCLUDED:
//   - FILTER, OPTIONAL, UNION, subqueries
//   - Property paths and blank-node syntax
//   - PREFIX declarations (every IRI is emitted in full)
//
// SEALED INTERFACES:
//
// Query is a sealed interface using the marker method pattern. Only types in
// this package implement it, so backends can switch exhaustively:
//
//	switch q := query.(type) {
//	case queryir.Construct:
//	case queryir.SelectResources:
//	case queryir.CountInstances:
//	}
package queryir
