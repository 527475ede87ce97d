package endpoint

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csgen/internal/ir"
)

const bandsJSON = `{
  "head": {"vars": ["x"]},
  "results": {"bindings": [
    {"x": {"type": "uri", "value": "http://dbpedia.org/resource/Queen"}},
    {"x": {"type": "uri", "value": "http://dbpedia.org/resource/ABBA"}}
  ]}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestClientSelectGET(t *testing.T) {
	var gotQuery, gotAccept, gotAgent string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", resultsMediaType)
		_, _ = io.WriteString(w, bandsJSON)
	})

	client := NewClient(testConfig(srv.URL))
	results, err := client.Select(context.Background(), "SELECT ?x WHERE {?x a <http://dbpedia.org/ontology/Band>} LIMIT 2")
	require.NoError(t, err)

	assert.Equal(t, "SELECT ?x WHERE {?x a <http://dbpedia.org/ontology/Band>} LIMIT 2", gotQuery)
	assert.Equal(t, resultsMediaType, gotAccept)
	assert.Equal(t, DefaultUserAgent, gotAgent)

	assert.Equal(t, []string{"x"}, results.Vars())
	assert.Equal(t, 2, results.Len())
	assert.Equal(t, []string{
		"http://dbpedia.org/resource/Queen",
		"http://dbpedia.org/resource/ABBA",
	}, results.Column("x"))
}

func TestClientSelectPOST(t *testing.T) {
	var gotQuery, gotType string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		_, _ = io.WriteString(w, bandsJSON)
	})

	cfg := testConfig(srv.URL)
	cfg.Method = "post"
	results, err := NewClient(cfg).Select(context.Background(), "SELECT ?x WHERE {?x a <C>}")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "SELECT ?x WHERE {?x a <C>}", gotQuery)
	assert.Equal(t, 2, results.Len())
}

func TestClientSelectEmptyResults(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"head":{"vars":["x"]},"results":{"bindings":[]}}`)
	})

	results, err := NewClient(testConfig(srv.URL)).Select(context.Background(), "SELECT ?x WHERE {?x a <C>}")
	require.NoError(t, err, "empty results are not an error")
	assert.Equal(t, 0, results.Len())
	assert.Empty(t, results.Column("x"))
}

func TestClientSelectStatusError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Virtuoso 37000 Error SP030: SPARQL compiler", http.StatusBadRequest)
	})

	_, err := NewClient(testConfig(srv.URL)).Select(context.Background(), "SELECT")
	require.Error(t, err)

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeStatus, re.Code)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Contains(t, re.Message, "SP030")
	assert.Equal(t, srv.URL, re.Endpoint)
}

func TestClientSelectDecodeError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	})

	_, err := NewClient(testConfig(srv.URL)).Select(context.Background(), "SELECT ?x {}")

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeDecode, re.Code)
	assert.NotNil(t, errors.Unwrap(re))
}

func TestClientSelectTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(testConfig(url)).Select(context.Background(), "SELECT ?x {}")

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeTransport, re.Code)
	assert.True(t, IsResolutionError(err))
}

func TestClientSelectContextCanceled(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, bandsJSON)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(testConfig(srv.URL)).Select(ctx, "SELECT ?x {}")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.URL = "ftp://example.org/sparql"
	assert.ErrorContains(t, bad.Validate(), "scheme must be http or https")

	bad = DefaultConfig()
	bad.Method = "PUT"
	assert.ErrorContains(t, bad.Validate(), "must be GET or POST")

	bad = DefaultConfig()
	bad.Timeout = -time.Second
	assert.ErrorContains(t, bad.Validate(), "must not be negative")
}

func TestDecodeResultsTerms(t *testing.T) {
	doc := `{
	  "head": {"vars": ["v"]},
	  "results": {"bindings": [
	    {"v": {"type": "uri", "value": "http://ex.org/a"}},
	    {"v": {"type": "literal", "value": "Queen"}},
	    {"v": {"type": "literal", "value": "chat", "xml:lang": "fr"}},
	    {"v": {"type": "typed-literal", "value": "4", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}},
	    {"v": {"type": "literal", "value": "1970", "datatype": "http://www.w3.org/2001/XMLSchema#gYear"}},
	    {"v": {"type": "literal", "value": "s", "datatype": "http://www.w3.org/2001/XMLSchema#string"}},
	    {"v": {"type": "bnode", "value": "b0"}},
	    {"v": {"type": "uri", "value": "http://ex.org/a b"}}
	  ]}
	}`

	results, err := decodeResults(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"v"}, results.Vars())
	assert.Equal(t, 8, results.Len())
	assert.Equal(t, []ir.Term{
		ir.NewIRI("http://ex.org/a"),
		ir.NewLiteral(`"Queen"`),
		ir.NewLiteral(`"chat"@fr`),
		ir.NewLiteral(`"4"^^<http://www.w3.org/2001/XMLSchema#integer>`),
		ir.NewLiteral(`"1970"^^<http://www.w3.org/2001/XMLSchema#gYear>`),
		ir.NewLiteral(`"s"`),
	}, results.Terms("v"), "blank nodes and unwritable IRIs are skipped")
	assert.Equal(t, []string{"http://ex.org/a", "Queen", "chat", "4", "1970", "s", "b0"}, results.Column("v"))
}

func TestNewResults(t *testing.T) {
	a, err := rdf.NewIRI("urn:a")
	require.NoError(t, err)

	results := NewResults([]string{"x"}, map[string]rdf.Term{"x": a}, map[string]rdf.Term{})
	assert.Equal(t, 2, results.Len())
	assert.Equal(t, []string{"urn:a"}, results.Column("x"))
	assert.Equal(t, []ir.Term{ir.NewIRI("urn:a")}, results.Terms("x"))
	assert.Nil(t, Term(nil))
}
