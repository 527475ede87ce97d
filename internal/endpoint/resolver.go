package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/roach88/csgen/internal/queryir"
	"github.com/roach88/csgen/internal/querysparql"
)

// ResourceResolver looks up instances of a class.
type ResourceResolver interface {
	// ListResourcesOfClass returns up to limit instance IRIs of classIRI.
	ListResourcesOfClass(ctx context.Context, classIRI string, limit int) ([]string, error)

	// RandomResource returns one instance of classIRI chosen uniformly.
	RandomResource(ctx context.Context, classIRI string) (string, error)
}

// Selector runs SELECT queries. *Client implements it.
type Selector interface {
	Select(ctx context.Context, query string) (*Results, error)
}

// Resolver implements ResourceResolver on top of a Selector.
type Resolver struct {
	selector Selector
	compiler *querysparql.Compiler
	intn     func(n int) int
	logger   *slog.Logger
}

var _ ResourceResolver = (*Resolver)(nil)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRandom replaces the random source used by RandomResource. intn must
// return a value in [0, n).
func WithRandom(intn func(n int) int) ResolverOption {
	return func(r *Resolver) { r.intn = intn }
}

// WithResolverLogger sets the resolver's logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a Resolver.
func NewResolver(selector Selector, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		selector: selector,
		compiler: querysparql.NewCompiler(),
		intn:     rand.IntN,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListResourcesOfClass runs SELECT ?x WHERE {?x a <classIRI>} LIMIT limit
// and returns the ?x bindings in result order.
func (r *Resolver) ListResourcesOfClass(ctx context.Context, classIRI string, limit int) ([]string, error) {
	q := queryir.SelectResources{Class: classIRI, Limit: limit}
	results, err := r.run(ctx, q)
	if err != nil {
		return nil, err
	}

	resources := results.Column(q.ResourceVar())
	r.logger.Info("resolved resources", "class", classIRI, "limit", limit, "count", len(resources))
	return resources, nil
}

// RandomResource counts the instances of classIRI and fetches the one at a
// random offset. A class without instances is an ErrCodeEmptyClass error.
func (r *Resolver) RandomResource(ctx context.Context, classIRI string) (string, error) {
	total, err := r.CountInstances(ctx, classIRI)
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "", &ResolutionError{
			Code:    ErrCodeEmptyClass,
			Message: fmt.Sprintf("class <%s> has no instances", classIRI),
		}
	}

	offset := r.intn(total)
	q := queryir.SelectResources{Class: classIRI, Limit: 1, Offset: offset}
	results, err := r.run(ctx, q)
	if err != nil {
		return "", err
	}

	column := results.Column(q.ResourceVar())
	if len(column) == 0 {
		// The class shrank between the two queries.
		return "", &ResolutionError{
			Code:    ErrCodeEmptyClass,
			Message: fmt.Sprintf("no instance of <%s> at offset %d of %d", classIRI, offset, total),
		}
	}
	r.logger.Debug("random resource", "class", classIRI, "total", total, "offset", offset, "resource", column[0])
	return column[0], nil
}

// CountInstances returns the number of instances of classIRI.
func (r *Resolver) CountInstances(ctx context.Context, classIRI string) (int, error) {
	q := queryir.CountInstances{Class: classIRI}
	results, err := r.run(ctx, q)
	if err != nil {
		return 0, err
	}

	column := results.Column(q.ResultVar())
	if len(column) == 0 {
		return 0, &ResolutionError{
			Code:    ErrCodeDecode,
			Message: fmt.Sprintf("count query returned no ?%s binding", q.ResultVar()),
		}
	}
	total, err := strconv.Atoi(column[0])
	if err != nil || total < 0 {
		return 0, &ResolutionError{
			Code:    ErrCodeDecode,
			Message: fmt.Sprintf("count %q is not a non-negative integer", column[0]),
			Err:     err,
		}
	}
	return total, nil
}

func (r *Resolver) run(ctx context.Context, q queryir.Query) (*Results, error) {
	text, err := r.compiler.Compile(q)
	if err != nil {
		return nil, &ResolutionError{Code: ErrCodeQuery, Message: "build query", Err: err}
	}
	return r.selector.Select(ctx, text)
}
