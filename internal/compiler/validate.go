package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/csgen/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrTemplateNameEmpty   = "E101" // template name is required
	ErrPatternEmpty        = "E102" // pattern needs at least one triple
	ErrNoHoles             = "E103" // template has nothing to substitute
	ErrPredicateHole       = "E104" // hole in predicate position
	ErrInvalidQuery        = "E105" // rendered query does not parse
	ErrDuplicateTriple     = "E106" // same triple twice in pattern or condition
	ErrDuplicateTemplate   = "E107" // two templates share a name
	ErrUnboundConditionVar = "E108" // condition variable absent from pattern
)

// ValidationError represents a template validation problem. Warnings do
// not prevent the template from being used.
type ValidationError struct {
	Template string `json:"template,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Warning  bool   `json:"warning,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Template, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// HasErrors reports whether errs contains anything other than warnings.
func HasErrors(errs []ValidationError) bool {
	return slices.ContainsFunc(errs, func(e ValidationError) bool { return !e.Warning })
}

// Validate checks a compiled template.
// Returns all problems found (does not fail-fast).
func Validate(t *Template) []ValidationError {
	var errs []ValidationError
	add := func(field, code, msg string, warning bool) {
		errs = append(errs, ValidationError{Template: t.Name, Field: field, Message: msg, Code: code, Warning: warning})
	}

	// E101: name is required
	if strings.TrimSpace(t.Name) == "" {
		add("name", ErrTemplateNameEmpty, "template name is required", false)
	}

	// E102: at least one pattern triple
	if len(t.Pattern) == 0 {
		add("pattern", ErrPatternEmpty, "at least one triple is required", false)
	}

	holes := 0
	parts := []struct {
		field string
		p     ir.Pattern
	}{{"pattern", t.Pattern}, {"condition", t.Condition}}
	for _, part := range parts {
		for i, triple := range part.p {
			if ir.IsPlaceholder(triple.Subject) {
				holes++
			}
			if ir.IsPlaceholder(triple.Object) {
				holes++
			}
			// E104: predicates are not substituted by default
			if ir.IsPlaceholder(triple.Predicate) {
				add(fmt.Sprintf("%s[%d].p", part.field, i), ErrPredicateHole,
					"placeholder in predicate position is only substituted with predicate substitution enabled", true)
			}
		}
	}

	// E103: nothing to substitute
	if holes == 0 {
		add("pattern", ErrNoHoles, "template has no placeholder; every instantiation is identical", true)
	}

	// E106: duplicate triples
	errs = append(errs, duplicateTriples(t.Name, "pattern", t.Pattern)...)
	errs = append(errs, duplicateTriples(t.Name, "condition", t.Condition)...)

	// E108: condition variables the pattern never binds
	bound := make(map[string]bool)
	for _, v := range t.Pattern.Variables() {
		bound[v] = true
	}
	for _, v := range t.Condition.Variables() {
		if !bound[v] {
			add("condition", ErrUnboundConditionVar, fmt.Sprintf("variable ?%s does not appear in the pattern", v), true)
		}
	}

	// E105: rendered query must parse
	if _, err := t.Statement().ToQuery(); err != nil {
		add("query", ErrInvalidQuery, err.Error(), false)
	}

	slices.SortStableFunc(errs, func(a, b ValidationError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return errs
}

// ValidateAll validates each template and checks names are unique.
func ValidateAll(templates []*Template) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i, t := range templates {
		// E107: duplicate names
		if seen[t.Name] {
			errs = append(errs, ValidationError{
				Template: t.Name,
				Field:    fmt.Sprintf("templates[%d].name", i),
				Message:  fmt.Sprintf("duplicate template name: %q", t.Name),
				Code:     ErrDuplicateTemplate,
			})
		}
		seen[t.Name] = true
		errs = append(errs, Validate(t)...)
	}
	return errs
}

func duplicateTriples(template, field string, p ir.Pattern) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)
	for i, triple := range p {
		key := triple.String()
		if first, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Template: template,
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Message:  fmt.Sprintf("duplicate of %s[%d]", field, first),
				Code:     ErrDuplicateTriple,
				Warning:  true,
			})
			continue
		}
		seen[key] = i
	}
	return errs
}
