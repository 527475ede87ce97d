package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/csgen/internal/completeness"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, seq, class_iri, template_name, template_hash, endpoint,
	resource_limit, resource_count, statement_count, created_at`

// RunFilter narrows ListRuns.
type RunFilter struct {
	// Class keeps only runs for this class IRI. Empty matches every class.
	Class string
	// Last keeps only the most recent runs when above zero.
	Last int
}

// ListRuns returns the runs matching f ordered by seq ASC, id ASC COLLATE
// BINARY. With f.Last set the most recent runs are kept, still in ascending
// order.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, f RunFilter) ([]Run, error) {
	where := ""
	args := []any{}
	if f.Class != "" {
		where = ` WHERE class_iri = ?`
		args = append(args, f.Class)
	}

	query := `SELECT ` + runColumns + ` FROM runs` + where + ` ORDER BY seq ASC, id COLLATE BINARY ASC`
	if f.Last > 0 {
		query = `SELECT * FROM (
			SELECT ` + runColumns + ` FROM runs` + where + ` ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
		) ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, f.Last)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run. Unknown IDs return an error wrapping
// ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ReadStatements returns the statements of a run ordered by position.
//
// Returns an empty slice (not nil) if the run has no statements.
func (s *Store) ReadStatements(ctx context.Context, runID string) ([]StatementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, resource, pattern, condition
		FROM statements
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	records := []StatementRecord{}
	for rows.Next() {
		rec, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return records, nil
}

// FindStatement returns every stored occurrence of the statement with the
// given content hash, ordered by run seq then position.
func (s *Store) FindStatement(ctx context.Context, id string) ([]StatementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.run_id, st.position, st.resource, st.pattern, st.condition
		FROM statements st
		JOIN runs r ON st.run_id = r.id
		WHERE st.id = ?
		ORDER BY r.seq ASC, st.run_id COLLATE BINARY ASC, st.position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query statement %s: %w", id, err)
	}
	defer rows.Close()

	records := []StatementRecord{}
	for rows.Next() {
		rec, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return records, nil
}

// MaxSeq returns the highest run seq, or 0 for an empty store.
// Used to resume the logical clock across processes.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Class,
		&run.TemplateName,
		&run.TemplateHash,
		&run.Endpoint,
		&run.Limit,
		&run.ResourceCount,
		&run.StatementCount,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("scan run: %w", err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return run, fmt.Errorf("scan run %s: created_at: %w", run.ID, err)
	}
	return run, nil
}

func scanStatement(row rowScanner) (StatementRecord, error) {
	var rec StatementRecord
	var patternJSON, conditionJSON string
	if err := row.Scan(&rec.RunID, &rec.Position, &rec.Resource, &patternJSON, &conditionJSON); err != nil {
		return rec, fmt.Errorf("scan statement: %w", err)
	}

	pattern, err := unmarshalPattern(patternJSON)
	if err != nil {
		return rec, fmt.Errorf("scan statement %s/%d: %w", rec.RunID, rec.Position, err)
	}
	condition, err := unmarshalPattern(conditionJSON)
	if err != nil {
		return rec, fmt.Errorf("scan statement %s/%d: %w", rec.RunID, rec.Position, err)
	}
	rec.Statement = completeness.New(pattern, condition)
	return rec, nil
}
