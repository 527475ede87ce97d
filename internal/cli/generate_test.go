package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/csgen/internal/store"
	"github.com/roach88/csgen/internal/testutil"
)

type generateResponse struct {
	Status string         `json:"status"`
	Data   GenerateResult `json:"data"`
	Error  *CLIError      `json:"error"`
}

func decodeGenerate(t *testing.T, stdout string) generateResponse {
	t.Helper()
	var resp generateResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	return resp
}

func TestGenerate_Text(t *testing.T) {
	res := execute(t, newTestResolver(), "generate", "--class", bandClass)
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "# songs-by-artist http://dbpedia.org/ontology/Band (2 statements, run run-1)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "CONSTRUCT {"))
	assert.Contains(t, lines[1], "<http://dbpedia.org/ontology/artist> <"+queen+">")
	assert.Contains(t, lines[2], "<http://dbpedia.org/ontology/artist> <"+abba+">")
	assert.NotContains(t, res.stdout, "___TEMPLATE___")
}

func TestGenerate_JSON(t *testing.T) {
	res := execute(t, newTestResolver(), "--format", "json", "generate", "--class", bandClass)
	require.NoError(t, res.err)

	resp := decodeGenerate(t, res.stdout)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Batches, 1)

	batch := resp.Data.Batches[0]
	assert.Equal(t, "run-1", batch.RunID)
	assert.Equal(t, int64(1), batch.Seq)
	assert.Equal(t, bandClass, batch.Class)
	assert.Equal(t, "songs-by-artist", batch.Template)
	assert.NotEmpty(t, batch.TemplateHash)
	assert.False(t, batch.Saved)

	require.Len(t, batch.Statements, 2)
	assert.Equal(t, queen, batch.Statements[0].Resource)
	assert.Equal(t, abba, batch.Statements[1].Resource)
	assert.NotEqual(t, batch.Statements[0].ID, batch.Statements[1].ID)
	assert.Equal(t, []string{
		"http://dbpedia.org/ontology/artist",
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
	}, batch.Statements[0].Predicates)
}

func TestGenerate_YAML(t *testing.T) {
	res := execute(t, newTestResolver(), "--format", "yaml", "generate", "--class", bandClass, "--limit", "1")
	require.NoError(t, res.err)

	var resp struct {
		Status string         `yaml:"status"`
		Data   GenerateResult `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Batches, 1)
	require.Len(t, resp.Data.Batches[0].Statements, 1)
	assert.Equal(t, queen, resp.Data.Batches[0].Statements[0].Resource)
}

func TestGenerate_MultipleClassesKeepOrder(t *testing.T) {
	resolver := newTestResolver()
	res := execute(t, resolver, "--format", "json", "generate", "--class", albumClass, "--class", bandClass)
	require.NoError(t, res.err)

	resp := decodeGenerate(t, res.stdout)
	require.Len(t, resp.Data.Batches, 2)
	assert.Equal(t, albumClass, resp.Data.Batches[0].Class)
	assert.Empty(t, resp.Data.Batches[0].Statements)
	assert.Equal(t, bandClass, resp.Data.Batches[1].Class)
	assert.Len(t, resp.Data.Batches[1].Statements, 2)
	assert.ElementsMatch(t, []string{albumClass, bandClass}, resolver.Calls())
}

func TestGenerate_TemplateFlag(t *testing.T) {
	res := execute(t, newTestResolver(), "--format", "json", "generate", "--class", bandClass, "--template", "members-of-band")
	require.NoError(t, res.err)

	resp := decodeGenerate(t, res.stdout)
	require.Len(t, resp.Data.Batches, 1)
	assert.Equal(t, "members-of-band", resp.Data.Batches[0].Template)
	assert.Contains(t, resp.Data.Batches[0].Statements[0].Query, "<"+queen+"> <http://dbpedia.org/ontology/bandMember> ?m")
}

func TestGenerate_TemplateFile(t *testing.T) {
	dir := t.TempDir()
	src := `templates:
  founded:
    prefixes:
      ex: "http://ex.org/"
    pattern:
      - ["ex:___TEMPLATE___", "ex:founded", "?year"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmpl.yaml"), []byte(src), 0644))

	res := executeIn(t, dir, newTestResolver(), "generate", "--class", bandClass, "--template", "tmpl.yaml#founded")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "<"+queen+"> <http://ex.org/founded> ?year")
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	res := execute(t, newTestResolver(), "generate", "--class", bandClass, "--template", "no-such-template")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E010]")
}

func TestGenerate_RequiresClass(t *testing.T) {
	res := execute(t, newTestResolver(), "generate")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "--class")
}

func TestGenerate_RejectsUnwritableClass(t *testing.T) {
	resolver := newTestResolver()
	res := execute(t, resolver, "generate", "--class", "http://dbpedia.org/ontology/Band> . ?x ?p ?o")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "invalid character '>'")
	assert.Empty(t, resolver.Calls(), "the class never reaches the endpoint")
}

func TestGenerate_LimitAboveMax(t *testing.T) {
	res := execute(t, newTestResolver(), "generate", "--class", bandClass, "--limit", "20000")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "exceeds max_limit")
}

func TestGenerate_ResolutionFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	resolver := testutil.NewStaticResolver(nil)

	// A canceled context makes the static resolver fail like a dead endpoint
	opts := &RootOptions{Overrides: &RuntimeOverrides{Resolver: resolver}}
	cmd := newRootCommand(opts)
	cmd.SetArgs([]string{"--format", "json", "generate", "--class", bandClass})
	out := &strings.Builder{}
	cmd.SetOut(out)
	cmd.SetErr(&strings.Builder{})

	ctx, cancel := canceledContext()
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeGenerate(t, out.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeResolution, resp.Error.Code)
}

func TestGenerate_SaveRecordsRun(t *testing.T) {
	dir := t.TempDir()
	res := executeIn(t, dir, newTestResolver(), "--format", "json", "generate", "--class", bandClass, "--save")
	require.NoError(t, res.err)
	assert.True(t, decodeGenerate(t, res.stdout).Data.Batches[0].Saved)

	st, err := store.Open(filepath.Join(dir, "csgen.db"))
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(t.Context(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, bandClass, run.Class)
	assert.Equal(t, 2, run.StatementCount)

	records, err := st.ReadStatements(t.Context(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, queen, records[0].Resource)
}

func TestGenerate_SaveResumesSequence(t *testing.T) {
	dir := t.TempDir()
	res := executeIn(t, dir, newTestResolver(), "generate", "--class", bandClass, "--save")
	require.NoError(t, res.err)

	// executeIn restarts the run IDs, so the second run needs its own
	t.Chdir(dir)
	opts := &RootOptions{Overrides: &RuntimeOverrides{
		Resolver: newTestResolver(),
		RunIDs:   testutil.NewFixedRunID("run-second"),
	}}
	cmd := newRootCommand(opts)
	out := &strings.Builder{}
	cmd.SetOut(out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetArgs([]string{"--format", "json", "generate", "--class", bandClass, "--save"})
	require.NoError(t, cmd.Execute())

	batch := decodeGenerate(t, out.String()).Data.Batches[0]
	assert.Equal(t, "run-second", batch.RunID)
	assert.Equal(t, int64(2), batch.Seq)
}

func TestGenerate_SubstituteCondition(t *testing.T) {
	dir := t.TempDir()
	src := `templates:
  scoped:
    prefixes:
      ex: "http://ex.org/"
    pattern:
      - ["?x", "ex:memberOf", "ex:___TEMPLATE___"]
    condition:
      - ["ex:___TEMPLATE___", "ex:active", "?x"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmpl.yaml"), []byte(src), 0644))

	res := executeIn(t, dir, newTestResolver(), "generate", "--class", bandClass, "--template", "tmpl.yaml", "--limit", "1")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "<http://ex.org/___TEMPLATE___> <http://ex.org/active>")

	res = executeIn(t, dir, newTestResolver(), "generate", "--class", bandClass, "--template", "tmpl.yaml", "--limit", "1", "--substitute-condition")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "<"+queen+"> <http://ex.org/active>")
	assert.NotContains(t, res.stdout, "___TEMPLATE___")
}

func TestRandom(t *testing.T) {
	res := execute(t, newTestResolver(), "--format", "json", "random", "--class", bandClass)
	require.NoError(t, res.err)

	resp := decodeGenerate(t, res.stdout)
	require.Len(t, resp.Data.Batches, 1)
	require.Len(t, resp.Data.Batches[0].Statements, 1)
	assert.Equal(t, queen, resp.Data.Batches[0].Statements[0].Resource)
}

func TestRandom_EmptyClass(t *testing.T) {
	res := execute(t, newTestResolver(), "random", "--class", albumClass)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "EMPTY_CLASS")
}

func TestRandom_SingleClassOnly(t *testing.T) {
	res := execute(t, newTestResolver(), "random", "--class", bandClass, "--class", albumClass)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}
