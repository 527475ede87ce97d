package completeness

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/sparql"
)

const (
	dbo    = "http://dbpedia.org/ontology/"
	dbr    = "http://dbpedia.org/resource/"
	artist = dbo + "artist"
)

var x = ir.NewVariable("x")

func songTemplate() Statement {
	return NewBuilder().
		Pattern(
			ir.TypeTriple(x, dbo+"Song"),
			ir.NewTriple(x, ir.NewIRI(artist), ir.NewIRI(dbr+ir.DefaultSentinel)),
		).
		Build()
}

func triple(s, p, o string) ir.TriplePattern {
	return ir.NewTriple(ir.NewVariable(s), ir.NewIRI(p), ir.NewVariable(o))
}

func TestNewNormalizesNil(t *testing.T) {
	s := New(nil, nil)

	assert.NotNil(t, s.Pattern())
	assert.NotNil(t, s.Condition())
	assert.Equal(t, 0, s.Length())
	assert.Empty(t, s.BodyAsTriplePatterns())
	assert.Empty(t, s.UniquePredicateList())
	assert.NotNil(t, s.UniquePredicateList())
}

func TestStatementDoesNotAlias(t *testing.T) {
	pattern := ir.NewPattern(triple("a", "p", "b"))
	s := New(pattern, nil)

	pattern[0] = triple("z", "z", "z")
	assert.Equal(t, "?a", s.Pattern()[0].Subject.String(), "New must copy the pattern")

	got := s.Pattern()
	got[0] = triple("z", "z", "z")
	assert.Equal(t, "?a", s.Pattern()[0].Subject.String(), "Pattern must return a copy")
}

func TestLengths(t *testing.T) {
	s := FromTriples(
		[]ir.TriplePattern{triple("a", "p", "b"), triple("b", "q", "c")},
		[]ir.TriplePattern{triple("c", "r", "d")},
	)

	assert.Equal(t, 2, s.PatternLength())
	assert.Equal(t, 1, s.ConditionLength())
	assert.Equal(t, 3, s.Length())
	assert.Equal(t, s.PatternLength()+s.ConditionLength(), s.Length())
}

func TestBodyAsTriplePatterns(t *testing.T) {
	t1, t2, c1 := triple("a", "p", "b"), triple("b", "q", "c"), triple("c", "r", "d")
	s := New(ir.NewPattern(t1, t2), ir.NewPattern(c1))

	assert.Equal(t, []ir.TriplePattern{t1, t2, c1}, s.BodyAsTriplePatterns())
}

func TestUniquePredicateList(t *testing.T) {
	s := New(
		ir.NewPattern(triple("a", "http://ex.org/q", "b"), triple("b", "http://ex.org/p", "c")),
		ir.NewPattern(triple("c", "http://ex.org/q", "d"), ir.NewTriple(x, ir.NewVariable("pred"), x)),
	)

	got := s.UniquePredicateList()
	assert.Equal(t, []string{"?pred", "http://ex.org/p", "http://ex.org/q"}, got)
	assert.IsNonDecreasing(t, got)
}

func TestUniquePredicateListReferenceTemplate(t *testing.T) {
	assert.Equal(t,
		[]string{artist, ir.RDFType},
		songTemplate().UniquePredicateList())
}

func TestToQueryStringExactText(t *testing.T) {
	tests := []struct {
		name string
		s    Statement
		want string
	}{
		{
			name: "pattern and condition",
			s:    New(ir.NewPattern(triple("a", "p", "b"), triple("b", "q", "c")), ir.NewPattern(triple("c", "r", "d"))),
			want: "CONSTRUCT {  ?a <p> ?b . ?b <q> ?c .  } WHERE {  ?a <p> ?b . ?b <q> ?c .  ?c <r> ?d .  }",
		},
		{
			name: "empty condition",
			s:    New(ir.NewPattern(triple("a", "p", "b")), nil),
			want: "CONSTRUCT {  ?a <p> ?b .  } WHERE {  ?a <p> ?b .   }",
		},
		{
			name: "empty statement",
			s:    New(nil, nil),
			want: "CONSTRUCT {   } WHERE {    }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.ToQueryString())
			assert.Equal(t, tt.want, tt.s.String())
		})
	}
}

func TestToQueryStringIdempotent(t *testing.T) {
	s := songTemplate()
	assert.Equal(t, s.ToQueryString(), s.ToQueryString())
	assert.Equal(t, s.ToQueryString(), New(s.Pattern(), s.Condition()).ToQueryString())
}

func TestToQueryStringGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "songs_by_artist_template", []byte(songTemplate().ToQueryString()))
}

func TestToQueryRoundTrip(t *testing.T) {
	statements := []Statement{
		songTemplate(),
		New(nil, nil),
		New(ir.NewPattern(triple("a", "p", "b")), ir.NewPattern(triple("b", "q", "c"), triple("c", "r", "d"))),
		New(ir.NewPattern(ir.NewTriple(x, ir.NewIRI("http://ex.org/name"), ir.NewLangLiteral("Queen", "en"))), nil),
	}

	for _, s := range statements {
		q, err := s.ToQuery()
		require.NoError(t, err, s.ToQueryString())

		assert.Equal(t, sparql.FormConstruct, q.Form)
		assert.Equal(t, s.PatternLength(), q.TemplateLen())
		assert.Equal(t, s.Length(), q.WhereLen())
		assert.Equal(t, s.Pattern(), q.Template)
		assert.Equal(t, ir.Pattern(s.BodyAsTriplePatterns()), q.Where)
	}
}

func TestToQueryConditionVariablesAllowed(t *testing.T) {
	s := New(ir.NewPattern(triple("a", "p", "b")), ir.NewPattern(triple("unbound", "q", "other")))

	q, err := s.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, 2, q.WhereLen())
}

func TestToQueryMalformedLiteral(t *testing.T) {
	bad := ir.NewLiteral(`"bad \q escape"`)
	s := New(ir.NewPattern(ir.NewTriple(x, ir.NewIRI("p"), bad)), nil)

	_, err := s.ToQuery()
	require.Error(t, err)

	var me *sparql.MalformedTermError
	assert.True(t, errors.As(err, &me), "got %T", err)
}

func TestToQueryLiteralPredicate(t *testing.T) {
	s := FromTriples([]ir.TriplePattern{
		ir.NewTriple(x, ir.NewLiteral(`"p"`), ir.NewIRI("http://e/o")),
	}, nil)

	_, err := s.ToQuery()
	require.Error(t, err)
	assert.True(t, sparql.IsParseError(err), "got %T: %v", err, err)
	assert.Contains(t, err.Error(), "expected predicate")
}

func TestToQueryLongLiteral(t *testing.T) {
	long := ir.NewLiteral(`"""multi "quoted" text"""`)
	s := New(ir.NewPattern(ir.NewTriple(x, ir.NewIRI("http://ex.org/comment"), long)), nil)

	q, err := s.ToQuery()
	require.NoError(t, err, s.ToQueryString())
	require.Equal(t, 1, q.TemplateLen())
	assert.Equal(t, long, q.Template[0].Object)
	assert.Equal(t, s.Pattern(), q.Template)
}

func TestToQueryMissingTerm(t *testing.T) {
	tests := []struct {
		name   string
		triple ir.TriplePattern
	}{
		{"zero triple", ir.TriplePattern{}},
		{"no subject", ir.NewTriple(nil, ir.NewIRI("p"), ir.NewIRI("o"))},
		{"no predicate", ir.NewTriple(x, nil, ir.NewIRI("o"))},
		{"no object", ir.NewTriple(x, ir.NewIRI("p"), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(ir.NewPattern(tt.triple), nil)

			require.NotPanics(t, func() { _ = s.ToQueryString() })
			_, err := s.ToQuery()
			require.Error(t, err)
			assert.True(t, sparql.IsParseError(err), "got %T: %v", err, err)
		})
	}
}

type recordingParser struct {
	text string
	err  error
}

func (p *recordingParser) Parse(text string) (*sparql.Query, error) {
	p.text = text
	return nil, p.err
}

func TestToQueryWithPropagatesParserError(t *testing.T) {
	want := &sparql.ParseError{Line: 1, Col: 1, Message: "boom"}
	p := &recordingParser{err: want}

	_, err := songTemplate().ToQueryWith(p)

	assert.Same(t, want, err, "parser errors must be returned unchanged")
	assert.Equal(t, songTemplate().ToQueryString(), p.text)
}

func TestWithPatternAndCondition(t *testing.T) {
	base := New(ir.NewPattern(triple("a", "p", "b")), nil)
	cond := ir.NewPattern(triple("b", "q", "c"))

	withCond := base.WithCondition(cond)
	assert.Equal(t, 0, base.ConditionLength(), "original must be unchanged")
	assert.Equal(t, 1, withCond.ConditionLength())

	replaced := withCond.WithPattern(nil)
	assert.Equal(t, 0, replaced.PatternLength())
	assert.Equal(t, 1, replaced.ConditionLength())
}

func TestBuilderBuildsIndependentStatements(t *testing.T) {
	b := NewBuilder().Pattern(triple("a", "p", "b"))
	first := b.Build()
	second := b.Condition(triple("b", "q", "c")).Pattern(triple("c", "r", "d")).Build()

	assert.Equal(t, 1, first.Length())
	assert.Equal(t, 2, second.PatternLength())
	assert.Equal(t, 1, second.ConditionLength())
}

func TestIDAndEqual(t *testing.T) {
	a := songTemplate()
	b := New(a.Pattern(), nil)
	c := a.WithCondition(ir.NewPattern(triple("x", "p", "y")))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.ID(), b.ID())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestHasPlaceholders(t *testing.T) {
	tmpl := songTemplate()
	assert.False(t, tmpl.HasPlaceholders(), "sentinel IRIs are not placeholders until promoted")

	promoted := New(ir.PromoteSentinels(tmpl.Pattern(), ir.DefaultSentinel), nil)
	assert.True(t, promoted.HasPlaceholders())
	assert.Equal(t, tmpl.ToQueryString(), promoted.ToQueryString(), "promotion keeps the query text")
}

func TestJSONRoundTrip(t *testing.T) {
	s := New(
		ir.PromoteSentinels(songTemplate().Pattern(), ir.DefaultSentinel),
		ir.NewPattern(ir.NewTriple(x, ir.NewIRI("http://ex.org/year"), ir.NewTypedLiteral("1970", "http://www.w3.org/2001/XMLSchema#gYear"))),
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got Statement
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, s.Equal(got))
}

func TestJSONShape(t *testing.T) {
	s := New(ir.NewPattern(ir.NewTriple(x, ir.NewIRI("p"), ir.NewIRI("o"))), nil)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pattern": [{
			"s": {"kind": "variable", "value": "x"},
			"p": {"kind": "iri", "value": "p"},
			"o": {"kind": "iri", "value": "o"}
		}],
		"condition": []
	}`, string(data))
}
