package queryir

import (
	"fmt"
	"regexp"

	"github.com/roach88/csgen/internal/ir"
)

// ValidationResult contains the executability analysis of a query.
//
// A query that is not executable still compiles; the warnings tell the
// caller why an endpoint would reject it or why its answer is likely
// meaningless.
type ValidationResult struct {
	// IsExecutable is true when no warnings were raised.
	IsExecutable bool

	// Warnings lists every problem found, in traversal order.
	// Empty (never nil) when IsExecutable is true.
	Warnings []string
}

// varName matches the SPARQL VARNAME production restricted to ASCII.
var varName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate checks a query for problems that compile fine but cannot run.
//
// Checked:
//  1. Template holes left in a Construct (an uninstantiated template)
//  2. Empty or unwritable class IRIs and negative LIMIT/OFFSET in resource
//     queries
//  3. Variable names that are not valid SPARQL variable names
//
// An empty Construct is valid: CONSTRUCT {   } WHERE {    } is legal SPARQL.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		IsExecutable: len(v.warnings) == 0,
		Warnings:     v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addWarning("query is nil")
	case Construct:
		v.validateConstruct(query)
	case *Construct:
		v.validateConstruct(*query)
	case SelectResources:
		v.validateSelect(query)
	case *SelectResources:
		v.validateSelect(*query)
	case CountInstances:
		v.validateCount(query)
	case *CountInstances:
		v.validateCount(*query)
	default:
		v.addWarning("unknown query type: %T", q)
	}
}

func (v *validator) validateConstruct(c Construct) {
	v.validatePattern("template", c.Template)
	for i, p := range c.Where {
		v.validatePattern(fmt.Sprintf("where[%d]", i), p)
	}
}

func (v *validator) validatePattern(where string, p ir.Pattern) {
	for i, t := range p {
		for _, term := range t.Terms() {
			switch tt := term.(type) {
			case nil:
				v.addWarning("%s triple %d: missing term", where, i)
			case ir.Placeholder:
				v.addWarning("%s triple %d: uninstantiated template hole %s", where, i, tt.String())
			case ir.Variable:
				v.validateVar(fmt.Sprintf("%s triple %d", where, i), tt.Name)
			}
		}
	}
}

func (v *validator) validateSelect(q SelectResources) {
	v.validateVar("select", q.ResourceVar())
	v.validateClass("select", q.Class)
	if q.Limit < 0 {
		v.addWarning("select: negative LIMIT %d", q.Limit)
	}
	if q.Offset < 0 {
		v.addWarning("select: negative OFFSET %d", q.Offset)
	}
}

func (v *validator) validateCount(q CountInstances) {
	v.validateVar("count", q.ResourceVar())
	v.validateVar("count", q.ResultVar())
	v.validateClass("count", q.Class)
	if q.ResourceVar() == q.ResultVar() {
		v.addWarning("count: result variable ?%s shadows counted variable", q.ResultVar())
	}
}

func (v *validator) validateClass(where, class string) {
	if class == "" {
		v.addWarning("%s: class IRI is empty", where)
		return
	}
	if err := ir.CheckIRIRef(class); err != nil {
		v.addWarning("%s: %v", where, err)
	}
}

func (v *validator) validateVar(where, name string) {
	if !varName.MatchString(name) {
		v.addWarning("%s: invalid variable name %q", where, name)
	}
}
