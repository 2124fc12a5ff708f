package driving

import (
	"context"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// RunHistory reads recorded batch runs. It is the history command's
// read-only view; writing runs is the orchestrator's concern.
type RunHistory interface {
	// ListRuns returns the most recent runs, newest first, each with
	// its per-job results. limit <= 0 means a store-chosen default.
	ListRuns(ctx context.Context, limit int) ([]domain.BatchSummary, error)

	// GetRun returns one run with its per-job results. It returns
	// domain.ErrNotFound when no run has the given ID.
	GetRun(ctx context.Context, runID string) (*domain.BatchSummary, error)
}
