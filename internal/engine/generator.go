package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/csgen/internal/completeness"
	"github.com/roach88/csgen/internal/endpoint"
	"github.com/roach88/csgen/internal/instantiate"
	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/store"
)

// DefaultConcurrency bounds GenerateAll when no concurrency is configured.
const DefaultConcurrency = 4

// Recorder persists batches. *store.Store implements it.
type Recorder interface {
	WriteRun(ctx context.Context, run store.Run) error
	WriteStatements(ctx context.Context, records []store.StatementRecord) error
}

var (
	_ Recorder  = (*store.Store)(nil)
	_ SeqSource = (*store.Store)(nil)
)

// Request asks for one batch.
type Request struct {
	// Class is the IRI whose instances fill the template hole.
	Class string

	// Limit caps the resources resolved. Zero uses DefaultLimit.
	Limit int

	// Random resolves a single uniformly chosen instance instead of a list.
	Random bool

	// Template is instantiated once per resource.
	Template completeness.Statement

	// TemplateName is recorded with the run.
	TemplateName string
}

// Batch is the output of one request.
type Batch struct {
	RunID        string
	Seq          int64
	Class        string
	TemplateName string
	TemplateHash string
	Resources    []string
	Statements   []completeness.Statement
	CreatedAt    time.Time
}

// Records returns the batch as store records, one per statement.
func (b *Batch) Records() []store.StatementRecord {
	records := make([]store.StatementRecord, len(b.Statements))
	for i, stmt := range b.Statements {
		records[i] = store.StatementRecord{
			RunID:     b.RunID,
			Position:  i,
			Resource:  b.Resources[i],
			Statement: stmt,
		}
	}
	return records
}

// Generator produces batches of completeness statements.
//
// Thread-safety: Generate and GenerateAll are safe for concurrent use as
// long as the resolver and recorder are.
type Generator struct {
	resolver     endpoint.ResourceResolver
	instantiator *instantiate.Instantiator
	recorder     Recorder
	ids          RunIDGenerator
	clock        *Clock
	now          func() time.Time
	endpoint     string
	maxLimit     int
	concurrency  int
	logger       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder records every successful batch.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithRunIDs replaces the run ID generator.
func WithRunIDs(ids RunIDGenerator) Option {
	return func(g *Generator) { g.ids = ids }
}

// WithClock replaces the logical clock, e.g. one resumed from the store.
func WithClock(c *Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithNow replaces the wall clock used for CreatedAt.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEndpoint sets the endpoint URL recorded with each run.
func WithEndpoint(url string) Option {
	return func(g *Generator) { g.endpoint = url }
}

// WithMaxLimit caps Request.Limit. Zero or less disables the cap.
func WithMaxLimit(n int) Option {
	return func(g *Generator) { g.maxLimit = n }
}

// WithConcurrency bounds the requests GenerateAll runs at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) { g.concurrency = n }
}

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a Generator.
func NewGenerator(resolver endpoint.ResourceResolver, inst *instantiate.Instantiator, opts ...Option) *Generator {
	g := &Generator{
		resolver:     resolver,
		instantiator: inst,
		ids:          UUIDv7Generator{},
		clock:        NewClock(),
		now:          time.Now,
		maxLimit:     DefaultMaxLimit,
		concurrency:  DefaultConcurrency,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.instantiator == nil {
		g.instantiator = instantiate.New()
	}
	return g
}

// Generate resolves, instantiates and (optionally) records one batch.
//
// Every failure is a *GenerationError and yields no batch.
func (g *Generator) Generate(ctx context.Context, req Request) (*Batch, error) {
	if req.Class == "" {
		return nil, &GenerationError{Code: ErrCodeInvalidRequest, Message: "class IRI is empty"}
	}
	if err := ir.CheckIRIRef(req.Class); err != nil {
		return nil, &GenerationError{Code: ErrCodeInvalidRequest, Message: "class IRI", Class: req.Class, Err: err}
	}
	limit, err := effectiveLimit(req.Class, req.Limit, g.maxLimit)
	if err != nil {
		return nil, &GenerationError{Code: ErrCodeInvalidRequest, Message: "resource limit", Class: req.Class, Err: err}
	}

	batch := &Batch{
		RunID:        g.ids.Generate(),
		Seq:          g.clock.Next(),
		Class:        req.Class,
		TemplateName: req.TemplateName,
		CreatedAt:    g.now().UTC(),
	}
	batch.TemplateHash, err = ir.TemplateHash(req.TemplateName, req.Template.Pattern(), req.Template.Condition())
	if err != nil {
		return nil, &GenerationError{Code: ErrCodeInvalidRequest, Message: "hash template", RunID: batch.RunID, Class: req.Class, Err: err}
	}

	logger := g.logger.With("run", batch.RunID, "class", req.Class, "template", req.TemplateName)

	batch.Resources, err = g.resolve(ctx, req, limit)
	if err != nil {
		logger.Error("resolution failed", "error", err)
		return nil, &GenerationError{Code: ErrCodeResolution, Message: "resolve resources", RunID: batch.RunID, Class: req.Class, Err: err}
	}

	if g.instantiator.CountPlaceholders(req.Template) == 0 {
		logger.Warn("template has no placeholders; statements will repeat the template",
			"sentinel", g.instantiator.Sentinel)
	}
	batch.Statements = g.instantiator.Instantiate(req.Template, batch.Resources)

	if g.recorder != nil {
		if err := g.record(ctx, batch, limit); err != nil {
			logger.Error("persist failed", "error", err)
			return nil, &GenerationError{Code: ErrCodePersist, Message: "record batch", RunID: batch.RunID, Class: req.Class, Err: err}
		}
	}

	logger.Info("generated batch", "seq", batch.Seq, "resources", len(batch.Resources), "statements", len(batch.Statements))
	return batch, nil
}

// GenerateAll runs one Generate per request, at most the configured
// concurrency at a time. Batches are returned in request order. The first
// failure cancels the remaining requests and is returned.
func (g *Generator) GenerateAll(ctx context.Context, reqs []Request) ([]*Batch, error) {
	batches := make([]*Batch, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	if g.concurrency > 0 {
		eg.SetLimit(g.concurrency)
	}

	for i, req := range reqs {
		eg.Go(func() error {
			batch, err := g.Generate(ctx, req)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (g *Generator) resolve(ctx context.Context, req Request, limit int) ([]string, error) {
	if req.Random {
		resource, err := g.resolver.RandomResource(ctx, req.Class)
		if err != nil {
			return nil, err
		}
		return []string{resource}, nil
	}

	resources, err := g.resolver.ListResourcesOfClass(ctx, req.Class, limit)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []string{}
	}
	return resources, nil
}

func (g *Generator) record(ctx context.Context, b *Batch, limit int) error {
	run := store.Run{
		ID:             b.RunID,
		Seq:            b.Seq,
		Class:          b.Class,
		TemplateName:   b.TemplateName,
		TemplateHash:   b.TemplateHash,
		Endpoint:       g.endpoint,
		Limit:          limit,
		ResourceCount:  len(b.Resources),
		StatementCount: len(b.Statements),
		CreatedAt:      b.CreatedAt,
	}
	if err := g.recorder.WriteRun(ctx, run); err != nil {
		return err
	}
	if err := g.recorder.WriteStatements(ctx, b.Records()); err != nil {
		return fmt.Errorf("run %s: %w", b.RunID, err)
	}
	return nil
}
