package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/csgen/internal/engine"
	"github.com/roach88/csgen/internal/instantiate"
	"github.com/roach88/csgen/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Queries  []string // Produced queries for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Queries) > 0 {
		fmt.Fprintf(&buf, "\nQueries:\n")
		for i, q := range e.Queries {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, q)
		}
	}

	return buf.String()
}

// assertStatementCount checks the number of statements produced.
func assertStatementCount(result *Result, a Assertion) error {
	if got := len(result.Statements); got != a.Count {
		return &AssertionError{
			Type:     AssertStatementCount,
			Expected: fmt.Sprintf("%d statements", a.Count),
			Actual:   fmt.Sprintf("%d statements", got),
			Queries:  result.Queries(),
		}
	}
	return nil
}

// assertQueryContains checks query text for a substring: in one statement
// when Index is set, in every statement when All is set, and in any
// statement otherwise.
func assertQueryContains(result *Result, a Assertion) error {
	queries := result.Queries()
	fail := func(expected, actual string) error {
		return &AssertionError{Type: AssertQueryContains, Expected: expected, Actual: actual, Queries: queries}
	}

	switch {
	case a.Index != nil:
		i := *a.Index
		if i >= len(queries) {
			return fail(fmt.Sprintf("query %d contains %q", i, a.Text), fmt.Sprintf("only %d queries", len(queries)))
		}
		if !strings.Contains(queries[i], a.Text) {
			return fail(fmt.Sprintf("query %d contains %q", i, a.Text), "not found")
		}
	case a.All:
		for i, q := range queries {
			if !strings.Contains(q, a.Text) {
				return fail(fmt.Sprintf("every query contains %q", a.Text), fmt.Sprintf("query %d does not", i))
			}
		}
	default:
		if !slices.ContainsFunc(queries, func(q string) bool { return strings.Contains(q, a.Text) }) {
			return fail(fmt.Sprintf("some query contains %q", a.Text), "not found in any query")
		}
	}
	return nil
}

// assertPredicates checks every statement's unique predicate list.
// The expected list is compared sorted and deduplicated.
func assertPredicates(result *Result, a Assertion) error {
	want := slices.Clone(a.Predicates)
	slices.Sort(want)
	want = slices.Compact(want)

	for i, s := range result.Statements {
		if !slices.Equal(s.Predicates, want) {
			return &AssertionError{
				Type:     AssertPredicates,
				Expected: fmt.Sprintf("predicates %v", want),
				Actual:   fmt.Sprintf("statement %d has %v", i, s.Predicates),
				Queries:  result.Queries(),
			}
		}
	}
	return nil
}

// assertNoPlaceholders checks that substitution left no hole behind.
func assertNoPlaceholders(result *Result, batch *engine.Batch, inst *instantiate.Instantiator) error {
	for i, stmt := range batch.Statements {
		if stmt.HasPlaceholders() || inst.CountPlaceholders(stmt) > 0 {
			return &AssertionError{
				Type:     AssertNoPlaceholders,
				Expected: "no template holes",
				Actual:   fmt.Sprintf("statement %d still has a hole", i),
				Queries:  result.Queries(),
			}
		}
	}
	return nil
}

// assertParses checks that every query parses back with matching
// template and WHERE triple counts.
func assertParses(result *Result, batch *engine.Batch) error {
	for i, stmt := range batch.Statements {
		q, err := stmt.ToQuery()
		if err != nil {
			return &AssertionError{
				Type:     AssertParses,
				Expected: fmt.Sprintf("query %d parses", i),
				Actual:   err.Error(),
				Queries:  result.Queries(),
			}
		}
		if q.TemplateLen() != stmt.PatternLength() || q.WhereLen() != stmt.Length() {
			return &AssertionError{
				Type:     AssertParses,
				Expected: fmt.Sprintf("query %d has %d template and %d where triples", i, stmt.PatternLength(), stmt.Length()),
				Actual:   fmt.Sprintf("%d template and %d where triples", q.TemplateLen(), q.WhereLen()),
				Queries:  result.Queries(),
			}
		}
	}
	return nil
}

// assertStored checks that every statement was recorded under the batch run.
func assertStored(ctx context.Context, st *store.Store, result *Result, batch *engine.Batch) error {
	records, err := st.ReadStatements(ctx, batch.RunID)
	if err != nil {
		return fmt.Errorf("stored assertion: %w", err)
	}
	if len(records) != len(batch.Statements) {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("%d stored statements", len(batch.Statements)),
			Actual:   fmt.Sprintf("%d stored statements", len(records)),
			Queries:  result.Queries(),
		}
	}
	for i, rec := range records {
		if !rec.Statement.Equal(batch.Statements[i]) {
			return &AssertionError{
				Type:     AssertStored,
				Expected: fmt.Sprintf("stored statement %d equals generated statement", i),
				Actual:   rec.Statement.ToQueryString(),
				Queries:  result.Queries(),
			}
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx          context.Context
	Store        *store.Store
	Batch        *engine.Batch
	Instantiator *instantiate.Instantiator
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the batch and store for assertions that
// need more than query text.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStatementCount:
			err = assertStatementCount(result, assertion)
		case AssertQueryContains:
			err = assertQueryContains(result, assertion)
		case AssertPredicates:
			err = assertPredicates(result, assertion)
		case AssertNoPlaceholders:
			if actx == nil || actx.Batch == nil || actx.Instantiator == nil {
				err = fmt.Errorf("assertion[%d]: no_placeholders requires the batch", i)
			} else {
				err = assertNoPlaceholders(result, actx.Batch, actx.Instantiator)
			}
		case AssertParses:
			if actx == nil || actx.Batch == nil {
				err = fmt.Errorf("assertion[%d]: parses requires the batch", i)
			} else {
				err = assertParses(result, actx.Batch)
			}
		case AssertStored:
			if actx == nil || actx.Store == nil || actx.Batch == nil {
				err = fmt.Errorf("assertion[%d]: stored requires database context", i)
			} else {
				err = assertStored(actx.Ctx, actx.Store, result, actx.Batch)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
