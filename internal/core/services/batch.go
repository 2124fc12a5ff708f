package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
)

// DefaultProbePages is assumed for a document whose page count cannot
// be determined locally.
const DefaultProbePages = 5

// OutputExtension is appended to each source's base name.
const OutputExtension = ".mmd"

// Ensure BatchOrchestrator implements the interface.
var _ driving.BatchRunner = (*BatchOrchestrator)(nil)

// BatchOrchestrator converts documents strictly one after another. The
// remote service is the bottleneck, so there is nothing to gain from
// concurrent submissions and plenty to lose in rate-limit handling.
type BatchOrchestrator struct {
	runner   *JobRunner
	counter  driven.PageCounter
	history  driven.HistoryStore
	reporter driven.ProgressReporter
}

// NewBatchOrchestrator creates a batch orchestrator. counter and
// history are optional: without a counter no page total is probed,
// without a history store runs are not recorded.
func NewBatchOrchestrator(runner *JobRunner, counter driven.PageCounter, history driven.HistoryStore, reporter driven.ProgressReporter) *BatchOrchestrator {
	if reporter == nil {
		reporter = driven.NopReporter{}
	}
	return &BatchOrchestrator{
		runner:   runner,
		counter:  counter,
		history:  history,
		reporter: reporter,
	}
}

// Run converts sources in order and returns the batch summary.
func (b *BatchOrchestrator) Run(ctx context.Context, sources []string, opts driving.RunOptions) (*domain.BatchSummary, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoDocuments
	}

	options := opts.Options
	if options == nil {
		options = domain.DefaultOptions()
	}

	summary := &domain.BatchSummary{StartedAt: time.Now()}

	// 1. Best-effort page total for batch-wide progress.
	if opts.ProbePages && len(sources) > 1 {
		summary.PagesExpected = b.probeTotal(sources)
	}

	b.reporter.BatchStarted(len(sources), summary.PagesExpected)

	// 2. One job at a time, each isolated from the others.
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			b.finish(ctx, summary)
			return summary, err
		}

		b.reporter.JobStarted(source, i+1, len(sources))
		job := domain.Job{
			Source:     source,
			OutputPath: b.outputPath(source, opts.OutDir),
			Options:    options.Clone(),
		}
		summary.Results = append(summary.Results, b.runner.RunJob(ctx, job, opts.SkipStatusCheck))
	}

	b.finish(ctx, summary)
	return summary, nil
}

// probeTotal counts pages across the batch without touching the
// network. An unreadable document contributes a fixed guess so the
// total stays useful for progress display.
func (b *BatchOrchestrator) probeTotal(sources []string) int {
	if b.counter == nil {
		return 0
	}
	total := 0
	for _, source := range sources {
		n, err := b.counter.CountPages(source)
		if err != nil || n <= 0 {
			b.reporter.Warnf("could not determine page count for %s: %v", filepath.Base(source), err)
			total += DefaultProbePages
			continue
		}
		total += n
	}
	return total
}

// outputPath derives the destination for a source document.
func (b *BatchOrchestrator) outputPath(source, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if outDir == "" {
		outDir = filepath.Dir(source)
	}
	return filepath.Join(outDir, base+OutputExtension)
}

// finish closes out the summary, records it, and reports it.
func (b *BatchOrchestrator) finish(ctx context.Context, summary *domain.BatchSummary) {
	summary.FinishedAt = time.Now()

	if b.history != nil && len(summary.Results) > 0 {
		if err := b.history.SaveRun(context.WithoutCancel(ctx), summary); err != nil {
			b.reporter.Warnf("record run: %v", err)
		}
	}

	b.reporter.BatchFinished(*summary)
}
