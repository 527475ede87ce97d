package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/csgen/internal/completeness"
	"github.com/roach88/csgen/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// createTestRun creates a test run with minimal required fields.
func createTestRun(id string, seq int64) Run {
	return Run{
		ID:           id,
		Seq:          seq,
		Class:        "http://dbpedia.org/ontology/Band",
		TemplateName: "songs-by-artist",
		TemplateHash: "test-hash",
		Endpoint:     "http://de.dbpedia.org/sparql",
		Limit:        1000,
		CreatedAt:    testTime,
	}
}

// createTestStatement returns the songs-by-artist statement for resource.
func createTestStatement(resource string) completeness.Statement {
	x := ir.NewVariable("x")
	return completeness.New(
		ir.NewPattern(
			ir.TypeTriple(x, "http://dbpedia.org/ontology/Song"),
			ir.NewTriple(x, ir.NewIRI("http://dbpedia.org/ontology/artist"), ir.NewIRI(resource)),
		),
		nil,
	)
}
