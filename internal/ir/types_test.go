package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriplePatternString(t *testing.T) {
	triple := NewTriple(NewVariable("x"), NewIRI("http://ex.org/p"), NewLiteral(`"o"`))
	assert.Equal(t, `?x <http://ex.org/p> "o"`, triple.String())
}

func TestTriplePatternStringMissingTerms(t *testing.T) {
	assert.NotPanics(t, func() { _ = TriplePattern{}.String() })
	assert.Equal(t, "  ", TriplePattern{}.String())
	assert.Equal(t, "?x  <o>", NewTriple(NewVariable("x"), nil, NewIRI("o")).String())
}

func TestTriplePatternJSONRoundTrip(t *testing.T) {
	triple := NewTriple(
		NewVariable("x"),
		NewIRI("http://dbpedia.org/ontology/artist"),
		NewPlaceholder("http://dbpedia.org/resource/___TEMPLATE___"),
	)

	data, err := json.Marshal(triple)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"s": {"kind": "variable", "value": "x"},
		"p": {"kind": "iri", "value": "http://dbpedia.org/ontology/artist"},
		"o": {"kind": "placeholder", "value": "http://dbpedia.org/resource/___TEMPLATE___"}
	}`, string(data))

	var got TriplePattern
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, triple, got)
}

func TestTriplePatternUnmarshalError(t *testing.T) {
	var got TriplePattern
	err := json.Unmarshal([]byte(`{"s":{"kind":"nope","value":""},"p":{},"o":{}}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject")
}

func TestPatternString(t *testing.T) {
	p := NewPattern(
		NewTriple(NewVariable("a"), NewIRI("p"), NewVariable("b")),
		NewTriple(NewVariable("b"), NewIRI("q"), NewVariable("c")),
	)
	assert.Equal(t, "?a <p> ?b . ?b <q> ?c . ", p.String())
	assert.Equal(t, "", Pattern{}.String())
}

func TestPatternCloneDoesNotAlias(t *testing.T) {
	triples := []TriplePattern{NewTriple(NewVariable("a"), NewIRI("p"), NewVariable("b"))}
	p := NewPattern(triples...)
	triples[0] = NewTriple(NewVariable("z"), NewIRI("z"), NewVariable("z"))
	assert.Equal(t, "?a", p[0].Subject.String(), "NewPattern must copy its input")

	c := p.Clone()
	c[0] = triples[0]
	assert.Equal(t, "?a", p[0].Subject.String(), "Clone must not alias")

	assert.NotNil(t, Pattern(nil).Clone())
	assert.Empty(t, Pattern(nil).Clone())
}

func TestPatternConcat(t *testing.T) {
	a := NewPattern(NewTriple(NewVariable("a"), NewIRI("p"), NewVariable("b")))
	b := NewPattern(NewTriple(NewVariable("c"), NewIRI("q"), NewVariable("d")))

	ab := a.Concat(b)
	require.Len(t, ab, 2)
	assert.Equal(t, a[0], ab[0])
	assert.Equal(t, b[0], ab[1])
	assert.Len(t, a, 1, "Concat must not grow the receiver")
}

func TestPatternVariables(t *testing.T) {
	p := NewPattern(
		NewTriple(NewVariable("x"), NewIRI("p"), NewVariable("y")),
		NewTriple(NewVariable("y"), NewIRI("q"), NewVariable("x")),
	)
	assert.Equal(t, []string{"x", "y"}, p.Variables())
}

func TestPromoteSentinels(t *testing.T) {
	marker := "http://dbpedia.org/resource/" + DefaultSentinel
	p := NewPattern(
		NewTriple(NewVariable("x"), NewIRI(RDFType), NewIRI("http://dbpedia.org/ontology/Song")),
		NewTriple(NewVariable("x"), NewIRI("http://dbpedia.org/ontology/artist"), NewIRI(marker)),
	)

	promoted := PromoteSentinels(p, DefaultSentinel)

	assert.Equal(t, p[0], promoted[0], "non-sentinel triples pass through")
	assert.Equal(t, NewPlaceholder(marker), promoted[1].Object)
	assert.Equal(t, NewIRI(marker), p[1].Object, "input must not be modified")

	// The rendered text is unchanged by promotion.
	assert.Equal(t, p.String(), promoted.String())
}

func TestPromoteSentinelsIgnoresLiteralsAndVariables(t *testing.T) {
	p := NewPattern(NewTriple(
		NewVariable(DefaultSentinel),
		NewIRI("p"),
		NewLiteral(`"`+DefaultSentinel+`"`),
	))

	promoted := PromoteSentinels(p, DefaultSentinel)
	assert.Equal(t, p, promoted)
}

func TestPromoteSentinelsEmptySentinel(t *testing.T) {
	p := NewPattern(NewTriple(NewVariable("x"), NewIRI("p"), NewIRI("anything")))
	assert.Equal(t, p, PromoteSentinels(p, ""))
}
