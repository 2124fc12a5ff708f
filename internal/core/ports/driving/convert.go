package driving

import (
	"context"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// BatchRunner converts a batch of documents sequentially.
type BatchRunner interface {
	// Run converts sources in order and returns the batch summary.
	// Individual job failures are recorded in the summary, not
	// returned; Run only returns an error when the batch itself could
	// not proceed (no inputs, cancelled context).
	Run(ctx context.Context, sources []string, opts RunOptions) (*domain.BatchSummary, error)
}

// RunOptions configures one batch run.
type RunOptions struct {
	// OutDir is where output files are written. Empty means next to
	// each source document.
	OutDir string

	// Options is the conversion option bag for every job in the run.
	// Nil means domain.DefaultOptions.
	Options domain.Options

	// SkipStatusCheck disables the final remote consistency check.
	SkipStatusCheck bool

	// ProbePages enables pre-computing the batch page total from the
	// local documents.
	ProbePages bool
}
