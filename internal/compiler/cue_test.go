package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csgen/internal/ir"
)

func TestCompileCUEBasic(t *testing.T) {
	src := `
template: "songs-by-artist": {
	description: "Songs of a band"
	pattern: [
		["?x", "rdf:type", "dbo:Song"],
		{s: "?x", p: "dbo:artist", o: "dbr:___TEMPLATE___"},
	]
	condition: [
		["?x", "dbo:releaseDate", "?date"],
	]
}
`
	templates, err := NewLoader("").CompileCUE("songs.cue", []byte(src))
	require.NoError(t, err)
	require.Len(t, templates, 1)

	tmpl := templates[0]
	assert.Equal(t, "songs-by-artist", tmpl.Name)
	assert.Equal(t, "Songs of a band", tmpl.Description)
	assert.Equal(t, "songs.cue", tmpl.Source)

	want := ir.NewPattern(
		ir.TypeTriple(ir.NewVariable("x"), "http://dbpedia.org/ontology/Song"),
		ir.NewTriple(ir.NewVariable("x"), ir.NewIRI("http://dbpedia.org/ontology/artist"),
			ir.NewPlaceholder("http://dbpedia.org/resource/___TEMPLATE___")),
	)
	assert.Equal(t, want, tmpl.Pattern)
	require.Len(t, tmpl.Condition, 1)
	assert.Equal(t, ir.NewVariable("date"), tmpl.Condition[0].Object)
}

func TestCompileCUEMultipleTemplatesInOrder(t *testing.T) {
	src := `
template: albums: pattern: [["?x", "a", "dbo:Album"]]
template: members: pattern: [["dbr:___TEMPLATE___", "dbo:bandMember", "?m"]]
`
	templates, err := NewLoader("").CompileCUE("multi.cue", []byte(src))
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "albums", templates[0].Name)
	assert.Equal(t, "members", templates[1].Name)
	assert.Empty(t, templates[0].Condition)
	assert.NotNil(t, templates[0].Condition)
}

func TestCompileCUECustomPrefixesAndSentinel(t *testing.T) {
	src := `
template: custom: {
	prefixes: ex: "http://example.org/"
	pattern: [["?x", "ex:memberOf", "ex:HOLE"]]
}
`
	templates, err := NewLoader("HOLE").CompileCUE("custom.cue", []byte(src))
	require.NoError(t, err)

	triple := templates[0].Pattern[0]
	assert.Equal(t, ir.NewIRI("http://example.org/memberOf"), triple.Predicate)
	assert.Equal(t, ir.NewPlaceholder("http://example.org/HOLE"), triple.Object)
	assert.Equal(t, map[string]string{"ex": "http://example.org/"}, templates[0].Prefixes)
}

func TestCompileCUEMissingPattern(t *testing.T) {
	src := `template: empty: description: "nothing"`

	_, err := NewLoader("").CompileCUE("empty.cue", []byte(src))
	require.Error(t, err)

	compileErr, ok := err.(*CompileError)
	require.True(t, ok, "error should be *CompileError")
	assert.Equal(t, "empty", compileErr.Template)
	assert.Equal(t, "pattern", compileErr.Field)
	assert.Contains(t, compileErr.Message, "required")
}

func TestCompileCUEEmptyPattern(t *testing.T) {
	src := `template: empty: pattern: []`

	_, err := NewLoader("").CompileCUE("empty.cue", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one triple is required")
}

func TestCompileCUEBadTripleArity(t *testing.T) {
	src := `template: short: pattern: [["?x", "a"]]`

	_, err := NewLoader("").CompileCUE("short.cue", []byte(src))
	require.Error(t, err)

	compileErr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "pattern[0]", compileErr.Field)
	assert.Contains(t, compileErr.Message, "3 terms, found 2")
	assert.True(t, compileErr.Pos.IsValid())
	assert.Equal(t, "short.cue", compileErr.Pos.Filename())
}

func TestCompileCUEMissingStructTerm(t *testing.T) {
	src := `template: t: pattern: [{s: "?x", p: "a"}]`

	_, err := NewLoader("").CompileCUE("t.cue", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern[0].o: term is required")
}

func TestCompileCUEBadTerm(t *testing.T) {
	src := `
template: bad: {
	pattern: [["?x", "a", "nope:Thing"]]
}
`
	_, err := NewLoader("").CompileCUE("bad.cue", []byte(src))
	require.Error(t, err)

	compileErr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "pattern[0].o", compileErr.Field)
	assert.Contains(t, compileErr.Message, `unknown prefix "nope"`)
	assert.Equal(t, 3, compileErr.Pos.Line())
}

func TestCompileCUESyntaxError(t *testing.T) {
	_, err := NewLoader("").CompileCUE("broken.cue", []byte(`template: { this is not valid CUE`))
	require.Error(t, err)

	compileErr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "cue", compileErr.Field)
}

func TestCompileCUEWrongType(t *testing.T) {
	src := `template: t: { description: 123, pattern: [["?x", "a", "dbo:Band"]] }`

	_, err := NewLoader("").CompileCUE("t.cue", []byte(src))
	require.Error(t, err)
}

func TestCompileCUENoTemplates(t *testing.T) {
	_, err := NewLoader("").CompileCUE("none.cue", []byte(`other: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no templates declared")
}

func TestCompileTemplateFromValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`template: songs: pattern: [["?x", "a", "dbo:Song"]]`)
	require.NoError(t, v.Err())

	tmpl, err := NewLoader("").CompileTemplate(v.LookupPath(cue.ParsePath("template.songs")))
	require.NoError(t, err)
	assert.Equal(t, "songs", tmpl.Name)
	assert.Equal(t, "?x <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://dbpedia.org/ontology/Song> . ", tmpl.Pattern.String())
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "pattern", Message: "pattern is required"}
	assert.Equal(t, "pattern: pattern is required", err.Error())

	err = &CompileError{Template: "t", Field: "pattern[0].o", Message: "bad", File: "t.yaml", Line: 4}
	assert.Equal(t, "t.yaml:4: template t: pattern[0].o: bad", err.Error())

	err = &CompileError{Field: "file", Message: "unsupported", File: "t.txt"}
	assert.Equal(t, "t.txt: file: unsupported", err.Error())
}
