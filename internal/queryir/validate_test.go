package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csgen/internal/ir"
)

func instantiatedPattern() ir.Pattern {
	return ir.NewPattern(
		ir.NewTriple(ir.NewVariable("x"), ir.NewIRI(ir.RDFType), ir.NewIRI("http://dbpedia.org/ontology/Song")),
		ir.NewTriple(ir.NewVariable("x"), ir.NewIRI("http://dbpedia.org/ontology/artist"), ir.NewIRI("http://dbpedia.org/resource/Queen")),
	)
}

func TestValidate_ExecutableConstruct(t *testing.T) {
	p := instantiatedPattern()
	result := Validate(NewStatementConstruct(p, nil))

	assert.True(t, result.IsExecutable)
	assert.NotNil(t, result.Warnings, "warnings must be empty, not nil")
	assert.Empty(t, result.Warnings)
}

func TestValidate_EmptyConstructIsExecutable(t *testing.T) {
	result := Validate(&Construct{})
	assert.True(t, result.IsExecutable)
}

func TestValidate_UninstantiatedTemplate(t *testing.T) {
	p := instantiatedPattern()
	p[1].Object = ir.NewPlaceholder("http://dbpedia.org/resource/___TEMPLATE___")

	result := Validate(NewStatementConstruct(p, nil))

	assert.False(t, result.IsExecutable)
	// The hole appears in the template and in where[0].
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "template triple 1: uninstantiated template hole")
	assert.Contains(t, result.Warnings[1], "where[0] triple 1")
}

func TestValidate_BadVariableName(t *testing.T) {
	p := ir.NewPattern(ir.NewTriple(ir.Variable{Name: "a b"}, ir.NewIRI("p"), ir.NewIRI("o")))

	result := Validate(Construct{Template: p})

	assert.False(t, result.IsExecutable)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `invalid variable name "a b"`)
}

func TestValidate_SelectResources(t *testing.T) {
	ok := Validate(SelectResources{Class: "http://dbpedia.org/ontology/Band", Limit: 1000})
	assert.True(t, ok.IsExecutable)

	bad := Validate(&SelectResources{Limit: -1, Offset: -2})
	assert.False(t, bad.IsExecutable)
	assert.Equal(t, []string{
		"select: class IRI is empty",
		"select: negative LIMIT -1",
		"select: negative OFFSET -2",
	}, bad.Warnings)
}

func TestValidate_UnwritableClassIRI(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"select", SelectResources{Class: "http://ex.org/C> . ?s ?p ?o"}, "select: invalid character '>'"},
		{"count", CountInstances{Class: "http://ex.org/a b"}, "count: invalid character ' '"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.IsExecutable)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tt.want)
		})
	}
}

func TestValidate_CountInstances(t *testing.T) {
	ok := Validate(CountInstances{Class: "http://dbpedia.org/ontology/Band"})
	assert.True(t, ok.IsExecutable)

	shadow := Validate(CountInstances{Class: "c", Var: "n", As: "n"})
	assert.False(t, shadow.IsExecutable)
	assert.Contains(t, shadow.Warnings[0], "shadows counted variable")
}

func TestValidate_NilQuery(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.IsExecutable)
	assert.Equal(t, []string{"query is nil"}, result.Warnings)
}
