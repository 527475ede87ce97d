package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/csgen/internal/completeness"
)

// Run is one generation batch: a class resolved and a template instantiated
// against its resources.
type Run struct {
	ID             string
	Seq            int64
	Class          string
	TemplateName   string
	TemplateHash   string
	Endpoint       string
	Limit          int
	ResourceCount  int
	StatementCount int
	CreatedAt      time.Time
}

// StatementRecord is one stored statement of a run.
type StatementRecord struct {
	RunID     string
	Position  int
	Resource  string
	Statement completeness.Statement
}

// ID returns the content hash of the stored statement.
func (r StatementRecord) ID() string {
	return r.Statement.ID()
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, class_iri, template_name, template_hash, endpoint,
		 resource_limit, resource_count, statement_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Class,
		run.TemplateName,
		run.TemplateHash,
		run.Endpoint,
		run.Limit,
		run.ResourceCount,
		run.StatementCount,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteStatements inserts the statements of a run in one transaction.
// Uses ON CONFLICT(run_id, position) DO NOTHING for idempotency.
//
// Note: The run referenced by each record must exist (foreign key constraint).
func (s *Store) WriteStatements(ctx context.Context, records []StatementRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write statements: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO statements
		(run_id, position, id, resource, pattern, condition, query)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, position) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write statements: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		patternJSON, err := marshalPattern(rec.Statement.Pattern())
		if err != nil {
			return fmt.Errorf("write statements: %w", err)
		}
		conditionJSON, err := marshalPattern(rec.Statement.Condition())
		if err != nil {
			return fmt.Errorf("write statements: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			rec.RunID,
			rec.Position,
			rec.ID(),
			rec.Resource,
			patternJSON,
			conditionJSON,
			rec.Statement.ToQueryString(),
		); err != nil {
			return fmt.Errorf("write statements: run %s position %d: %w", rec.RunID, rec.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write statements: commit: %w", err)
	}
	return nil
}
