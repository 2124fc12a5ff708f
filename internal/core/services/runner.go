package services

import (
	"context"
	"errors"
	"time"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// JobRunner drives a single document through the full conversion
// lifecycle: submit, retrieve via the fallback controller, then verify
// against the remote status. It always produces a result record; a
// failed job is a result, not a panic or a batch abort.
type JobRunner struct {
	converter driven.Converter
	sinks     driven.SinkFactory
	fallback  *FallbackController
	reporter  driven.ProgressReporter
}

// NewJobRunner creates a job runner.
func NewJobRunner(converter driven.Converter, sinks driven.SinkFactory, fallback *FallbackController, reporter driven.ProgressReporter) *JobRunner {
	if reporter == nil {
		reporter = driven.NopReporter{}
	}
	return &JobRunner{
		converter: converter,
		sinks:     sinks,
		fallback:  fallback,
		reporter:  reporter,
	}
}

// RunJob converts one document. skipStatusCheck drops the final remote
// consistency check, trusting whatever the fallback retrieved.
func (r *JobRunner) RunJob(ctx context.Context, job domain.Job, skipStatusCheck bool) domain.JobResult {
	result := r.runJob(ctx, job, skipStatusCheck)
	r.reporter.JobFinished(result)
	return result
}

func (r *JobRunner) runJob(ctx context.Context, job domain.Job, skipStatusCheck bool) domain.JobResult {
	// 1. Submit. Without a remote identifier there is no fallback.
	remoteID, err := r.converter.Submit(ctx, job.Source, job.Options)
	if err != nil {
		return r.failed(job, "", err)
	}
	job.RemoteID = remoteID
	r.reporter.JobSubmitted(job.Source, remoteID)

	// 2. Acquire the output sink for the job's duration.
	sink, err := r.sinks.Open(job.OutputPath)
	if err != nil {
		return r.failed(job, remoteID, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			r.reporter.Warnf("close %s: %v", job.OutputPath, cerr)
		}
	}()

	// 3. Retrieve: stream, then poll-and-download if needed.
	outcome, err := r.fallback.Convert(ctx, remoteID, sink)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrInterrupted
		}
		// Pages salvaged before the failure stay on disk; the result
		// reports them so the batch totals count what was written.
		failed := r.failed(job, remoteID, err)
		failed.PagesReceived = outcome.PagesReceived
		failed.PagesTotal = outcome.PagesTotal
		return failed
	}

	result := domain.JobResult{
		Source:        job.Source,
		RemoteID:      remoteID,
		OutputPath:    job.OutputPath,
		PagesReceived: outcome.PagesReceived,
		PagesTotal:    outcome.PagesTotal,
		Success:       true,
		Via:           outcome.Via,
		FinishedAt:    time.Now(),
	}

	// 4. Final consistency check against the remote status.
	if !skipStatusCheck {
		if ok, detail := r.verify(ctx, remoteID); !ok {
			result.Success = false
			result.Error = detail
		}
	}
	return result
}

// verify asks the service for a last status snapshot and accepts any
// state that does not contradict the retrieved output.
func (r *JobRunner) verify(ctx context.Context, remoteID string) (bool, string) {
	status, err := r.converter.Status(ctx, remoteID)
	if err != nil {
		r.reporter.Warnf("final status check for %s: %v", remoteID, err)
		return false, err.Error()
	}
	switch status.Status {
	case domain.StatusCompleted, domain.StatusSplit, domain.StatusProcessing:
		return true, ""
	default:
		detail := status.ErrorDetail
		if detail == "" {
			detail = "remote status " + status.Status
		}
		r.reporter.Warnf("final status for %s is %q", remoteID, status.Status)
		return false, detail
	}
}

func (r *JobRunner) failed(job domain.Job, remoteID string, err error) domain.JobResult {
	r.reporter.Errorf("convert %s: %v", job.Source, err)
	return domain.JobResult{
		Source:     job.Source,
		RemoteID:   remoteID,
		OutputPath: job.OutputPath,
		Via:        domain.ViaNone,
		Error:      err.Error(),
		FinishedAt: time.Now(),
	}
}
