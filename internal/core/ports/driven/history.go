package driven

import (
	"context"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// HistoryStore persists batch run records.
type HistoryStore interface {
	// SaveRun stores a finished run and assigns summary.RunID.
	SaveRun(ctx context.Context, summary *domain.BatchSummary) error

	// ListRuns returns the most recent runs, newest first, each with
	// its per-job results. limit <= 0 means a store-chosen default.
	ListRuns(ctx context.Context, limit int) ([]domain.BatchSummary, error)

	// GetRun returns one run with its per-job results. It returns
	// domain.ErrNotFound when no run has the given ID.
	GetRun(ctx context.Context, runID string) (*domain.BatchSummary, error)

	// Close releases the store.
	Close() error
}
