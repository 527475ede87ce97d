package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/csgen/internal/compiler"
	"github.com/roach88/csgen/internal/config"
	"github.com/roach88/csgen/internal/endpoint"
	"github.com/roach88/csgen/internal/engine"
	"github.com/roach88/csgen/internal/instantiate"
	"github.com/roach88/csgen/internal/store"
)

// newLogger returns a text logger on w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	return ctx, stop
}

// loadTemplate resolves the template reference ref, or the configured one
// when ref is empty.
func loadTemplate(cfg *config.Config, ref string) (*compiler.Template, error) {
	if ref == "" {
		ref = cfg.Template
	}
	return compiler.NewLoader(cfg.Sentinel).Resolve(ref)
}

// newInstantiator builds the instantiator the configuration describes.
func newInstantiator(cfg *config.Config) *instantiate.Instantiator {
	return instantiate.New(
		instantiate.WithSentinel(cfg.Sentinel),
		instantiate.WithConditionSubstitution(cfg.SubstituteCondition),
	)
}

// runtime holds what a generating command needs. Close releases it.
type runtime struct {
	generator *engine.Generator
	store     *store.Store
}

// RuntimeOverrides replaces production collaborators (for testing).
type RuntimeOverrides struct {
	// Resolver replaces the HTTP endpoint resolver.
	Resolver endpoint.ResourceResolver

	// RunIDs replaces the UUIDv7 run ID generator.
	RunIDs engine.RunIDGenerator
}

// newRuntime builds a generator for cfg. When save is set the run history
// database is opened and every batch is recorded; the logical clock resumes
// after the highest stored sequence number.
func newRuntime(ctx context.Context, cfg *config.Config, save bool, overrides *RuntimeOverrides, logger *slog.Logger) (*runtime, error) {
	var resolver endpoint.ResourceResolver
	var runIDs engine.RunIDGenerator = engine.UUIDv7Generator{}
	if overrides != nil {
		resolver = overrides.Resolver
		if overrides.RunIDs != nil {
			runIDs = overrides.RunIDs
		}
	}
	if resolver == nil {
		client := endpoint.NewClient(cfg.Endpoint, endpoint.WithLogger(logger))
		resolver = endpoint.NewResolver(client, endpoint.WithResolverLogger(logger))
	}

	opts := []engine.Option{
		engine.WithRunIDs(runIDs),
		engine.WithEndpoint(cfg.Endpoint.URL),
		engine.WithMaxLimit(cfg.MaxLimit),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithLogger(logger),
	}

	rt := &runtime{}
	if save {
		st, err := openStore(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		clock, err := engine.ResumeClock(ctx, st)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		rt.store = st
		opts = append(opts, engine.WithRecorder(st), engine.WithClock(clock))
	}

	rt.generator = engine.NewGenerator(resolver, newInstantiator(cfg), opts...)
	return rt, nil
}

// Close closes the run history database if one is open.
func (rt *runtime) Close(logger *slog.Logger) {
	if rt.store == nil {
		return
	}
	if err := rt.store.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// openStore opens the run history database (creating it if it doesn't exist).
func openStore(ctx context.Context, path string, logger *slog.Logger) (*store.Store, error) {
	logger.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
