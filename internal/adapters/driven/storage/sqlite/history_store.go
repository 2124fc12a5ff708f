package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// defaultListLimit caps ListRuns when the caller does not choose one.
const defaultListLimit = 20

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// SaveRun stores a finished run with its per-document results and
// assigns summary.RunID.
func (s *historyStore) SaveRun(ctx context.Context, summary *domain.BatchSummary) error {
	if summary.RunID == "" {
		summary.RunID = uuid.NewString()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, pages_expected)
		VALUES (?, ?, ?, ?)
	`, summary.RunID, summary.StartedAt.UTC(), summary.FinishedAt.UTC(), summary.PagesExpected)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO job_results
			(run_id, position, source, remote_id, output_path,
			 pages_received, pages_total, success, via, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range summary.Results {
		if _, err := stmt.ExecContext(ctx, summary.RunID, i, r.Source, r.RemoteID,
			r.OutputPath, r.PagesReceived, r.PagesTotal, r.Success, string(r.Via),
			r.Error, r.FinishedAt.UTC()); err != nil {
			return fmt.Errorf("saving job result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, each with its
// per-document results.
func (s *historyStore) ListRuns(ctx context.Context, limit int) ([]domain.BatchSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, pages_expected
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.BatchSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		results, err := s.loadResults(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}

	return runs, nil
}

// GetRun returns one run with its per-document results.
func (s *historyStore) GetRun(ctx context.Context, runID string) (*domain.BatchSummary, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, pages_expected
		FROM runs WHERE id = ?
	`, runID)

	var summary domain.BatchSummary
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&summary.RunID, &startedAt, &finishedAt, &summary.PagesExpected); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if startedAt.Valid {
		summary.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		summary.FinishedAt = finishedAt.Time
	}

	results, err := s.loadResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	summary.Results = results

	return &summary, nil
}

// loadResults fetches one run's job results in input order.
func (s *historyStore) loadResults(ctx context.Context, runID string) ([]domain.JobResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source, remote_id, output_path, pages_received, pages_total,
		       success, via, error, finished_at
		FROM job_results WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying job results: %w", err)
	}
	defer rows.Close()

	var results []domain.JobResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.JobResult
		var via string
		var finished sql.NullTime
		if err := rows.Scan(&r.Source, &r.RemoteID, &r.OutputPath, &r.PagesReceived,
			&r.PagesTotal, &r.Success, &via, &r.Error, &finished); err != nil {
			return nil, fmt.Errorf("scanning job result: %w", err)
		}
		r.Via = domain.ResultVia(via)
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job results: %w", err)
	}

	return results, nil
}

// Close closes the underlying database.
func (s *historyStore) Close() error {
	return s.store.Close()
}

// scanRun scans a run summary row without results.
func scanRun(rows *sql.Rows) (*domain.BatchSummary, error) {
	var summary domain.BatchSummary
	var startedAt, finishedAt sql.NullTime
	if err := rows.Scan(&summary.RunID, &startedAt, &finishedAt, &summary.PagesExpected); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if startedAt.Valid {
		summary.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		summary.FinishedAt = finishedAt.Time
	}
	return &summary, nil
}
