package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/csgen/internal/compiler"
	"github.com/roach88/csgen/internal/engine"
	"github.com/roach88/csgen/internal/instantiate"
	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/store"
	"github.com/roach88/csgen/internal/testutil"
)

// Harness is the scenario execution context.
// It runs scenarios through the generation engine with a static resolver,
// a fixed run ID and a frozen wall clock.
type Harness struct {
	store     *store.Store
	generator *engine.Generator
	inst      *instantiate.Instantiator
	logger    *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile or resolve the template
// 3. Generate one batch from the scenario resources
// 4. Evaluate assertions against the batch and the store
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	tmpl, err := scenario.loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	class := scenario.Class
	if class == "" {
		class = DefaultClass
	}

	sentinel := scenario.Sentinel
	if sentinel == "" {
		sentinel = ir.DefaultSentinel
	}
	inst := instantiate.New(
		instantiate.WithSentinel(sentinel),
		instantiate.WithConditionSubstitution(scenario.SubstituteCondition),
	)

	logger := slog.New(slog.DiscardHandler)
	resolver := testutil.NewStaticResolver(map[string][]string{class: scenario.Resources})
	h := &Harness{
		store: st,
		inst:  inst,
		generator: engine.NewGenerator(resolver, inst,
			engine.WithRecorder(st),
			engine.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)),
			engine.WithNow(testutil.NewWallClock(testutil.Epoch, 0).Now),
			engine.WithEndpoint("harness"),
			engine.WithMaxLimit(0),
			engine.WithLogger(logger),
		),
		logger: logger,
	}

	batch, err := h.generator.Generate(ctx, engine.Request{
		Class:        class,
		Limit:        max(len(scenario.Resources), 1),
		Template:     tmpl.Statement(),
		TemplateName: tmpl.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate: %w", err)
	}

	result := NewResult(batch.RunID)
	for i, stmt := range batch.Statements {
		result.Statements = append(result.Statements, StatementResult{
			ID:         stmt.ID(),
			Resource:   batch.Resources[i],
			Query:      stmt.ToQueryString(),
			Predicates: stmt.UniquePredicateList(),
			Length:     stmt.Length(),
		})
	}

	actx := &AssertionContext{
		Ctx:          ctx,
		Store:        h.store,
		Batch:        batch,
		Instantiator: h.inst,
	}
	for _, msg := range EvaluateAssertions(result, scenario.allAssertions(), actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"run", batch.RunID,
		"statements", len(batch.Statements),
		"pass", result.Pass,
	)
	return result, nil
}

// loadTemplate compiles an inline template or resolves a reference
// relative to the scenario file.
func (s *Scenario) loadTemplate() (*compiler.Template, error) {
	loader := compiler.NewLoader(s.Sentinel)

	if s.Template.Inline != nil {
		source := "inline"
		if s.dir != "" {
			source = s.dir
		}
		return loader.CompileYAMLNode(source, s.Name, s.Template.Inline)
	}

	ref := s.Template.Ref
	path, name, hasName := strings.Cut(ref, "#")
	if s.dir != "" && !filepath.IsAbs(path) {
		candidate := filepath.Join(s.dir, path)
		if _, err := os.Stat(candidate); err == nil {
			ref = candidate
			if hasName {
				ref += "#" + name
			}
		}
	}
	return loader.Resolve(ref)
}
