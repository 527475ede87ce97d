package testutil

import (
	"context"
	"sync"

	"github.com/roach88/csgen/internal/endpoint"
)

// StaticResolver answers resolution requests from a fixed table of class
// IRI to instance IRIs, without touching the network.
//
// Thread-safety: StaticResolver is safe for concurrent use.
type StaticResolver struct {
	mu        sync.Mutex
	resources map[string][]string
	calls     []string
}

var _ endpoint.ResourceResolver = (*StaticResolver)(nil)

// NewStaticResolver creates a resolver serving resources.
func NewStaticResolver(resources map[string][]string) *StaticResolver {
	return &StaticResolver{resources: resources}
}

// ListResourcesOfClass returns up to limit instances in table order.
func (r *StaticResolver) ListResourcesOfClass(ctx context.Context, classIRI string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &endpoint.ResolutionError{Code: endpoint.ErrCodeTransport, Message: "request canceled", Err: err}
	}
	r.record(classIRI)

	found := r.resources[classIRI]
	if limit >= 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, len(found))
	copy(out, found)
	return out, nil
}

// RandomResource returns the first instance of classIRI, or an empty-class
// error when there is none.
func (r *StaticResolver) RandomResource(ctx context.Context, classIRI string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &endpoint.ResolutionError{Code: endpoint.ErrCodeTransport, Message: "request canceled", Err: err}
	}
	r.record(classIRI)

	found := r.resources[classIRI]
	if len(found) == 0 {
		return "", &endpoint.ResolutionError{Code: endpoint.ErrCodeEmptyClass, Message: "no instances of " + classIRI}
	}
	return found[0], nil
}

// Calls returns the class IRIs queried so far, in order.
func (r *StaticResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *StaticResolver) record(classIRI string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, classIRI)
}
