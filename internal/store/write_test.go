package store

import (
	"context"
	"testing"

	"github.com/roach88/csgen/internal/ir"
)

func TestWriteRun_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", 7)
	run.ResourceCount = 2
	run.StatementCount = 2
	if err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var class, createdAt string
	var seq int64
	err := s.db.QueryRow(`SELECT class_iri, seq, created_at FROM runs WHERE id = ?`, run.ID).
		Scan(&class, &seq, &createdAt)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if class != run.Class {
		t.Errorf("class_iri = %q, want %q", class, run.Class)
	}
	if seq != 7 {
		t.Errorf("seq = %d, want 7", seq)
	}
	if createdAt != "2026-01-02T03:04:05Z" {
		t.Errorf("created_at = %q, want RFC 3339 UTC", createdAt)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", 1)
	for i := 0; i < 2; i++ {
		if err := s.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun() attempt %d failed: %v", i, err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("runs = %d, want 1", count)
	}
}

func TestWriteStatements_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	stmt := createTestStatement("http://dbpedia.org/resource/Queen")
	records := []StatementRecord{{RunID: "run-1", Position: 0, Resource: "http://dbpedia.org/resource/Queen", Statement: stmt}}
	if err := s.WriteStatements(ctx, records); err != nil {
		t.Fatalf("WriteStatements() failed: %v", err)
	}

	var id, pattern, condition, query string
	err := s.db.QueryRow(`SELECT id, pattern, condition, query FROM statements WHERE run_id = ? AND position = 0`, "run-1").
		Scan(&id, &pattern, &condition, &query)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if id != stmt.ID() {
		t.Errorf("id = %q, want %q", id, stmt.ID())
	}
	if query != stmt.ToQueryString() {
		t.Errorf("query = %q, want %q", query, stmt.ToQueryString())
	}
	if condition != "[]" {
		t.Errorf("condition = %q, want []", condition)
	}

	want, err := ir.MarshalCanonical(stmt.Pattern())
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	if pattern != string(want) {
		t.Errorf("pattern = %s, want %s", pattern, want)
	}
}

func TestWriteStatements_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	records := []StatementRecord{
		{RunID: "run-1", Position: 0, Resource: "urn:a", Statement: createTestStatement("urn:a")},
		{RunID: "run-1", Position: 1, Resource: "urn:b", Statement: createTestStatement("urn:b")},
	}
	for i := 0; i < 2; i++ {
		if err := s.WriteStatements(ctx, records); err != nil {
			t.Fatalf("WriteStatements() attempt %d failed: %v", i, err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM statements").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("statements = %d, want 2", count)
	}
}

func TestWriteStatements_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	records := []StatementRecord{{RunID: "missing", Position: 0, Resource: "urn:a", Statement: createTestStatement("urn:a")}}
	if err := s.WriteStatements(context.Background(), records); err == nil {
		t.Error("expected foreign key error, got nil")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM statements").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("statements after failed write = %d, want 0", count)
	}
}

func TestWriteStatements_Empty(t *testing.T) {
	s := createTestStore(t)
	if err := s.WriteStatements(context.Background(), nil); err != nil {
		t.Errorf("WriteStatements(nil) failed: %v", err)
	}
}
