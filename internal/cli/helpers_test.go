package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"

	"github.com/roach88/csgen/internal/engine"
	"github.com/roach88/csgen/internal/testutil"
)

const (
	bandClass  = "http://dbpedia.org/ontology/Band"
	queen      = "http://dbpedia.org/resource/Queen_(band)"
	abba       = "http://dbpedia.org/resource/ABBA"
	albumClass = "http://dbpedia.org/ontology/Album"
)

// execResult holds the captured output of one command execution.
type execResult struct {
	stdout string
	stderr string
	err    error
}

// newTestResolver serves bands and no albums.
func newTestResolver() *testutil.StaticResolver {
	return testutil.NewStaticResolver(map[string][]string{
		bandClass:  {queen, abba},
		albumClass: {},
	})
}

// execute runs the root command in a fresh working directory with args.
func execute(t *testing.T, resolver *testutil.StaticResolver, args ...string) execResult {
	t.Helper()
	return executeIn(t, t.TempDir(), resolver, args...)
}

// executeIn runs the root command in dir, keeping state such as the run
// history database between calls.
func executeIn(t *testing.T, dir string, resolver *testutil.StaticResolver, args ...string) execResult {
	t.Helper()
	color.NoColor = true
	t.Chdir(dir)

	var ids engine.RunIDGenerator = engine.NewFixedGenerator("run-1", "run-2", "run-3")
	opts := &RootOptions{Overrides: &RuntimeOverrides{RunIDs: ids}}
	if resolver != nil {
		opts.Overrides.Resolver = resolver
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return execResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// canceledContext returns a context that is already canceled.
func canceledContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx, cancel
}
