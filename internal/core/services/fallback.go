package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// fallbackState is one position in the conversion state machine.
type fallbackState int

const (
	stateStreaming fallbackState = iota
	statePolling
	stateDownloading
	stateDone
	stateFailed
)

// FallbackConfig tunes the polling phase of the fallback.
type FallbackConfig struct {
	// PollInterval is the pause between status polls.
	PollInterval time.Duration

	// PollCeiling is the wall-clock budget for the polling phase.
	// Once it elapses, the download is attempted regardless of status.
	PollCeiling time.Duration
}

// DefaultFallbackConfig returns the standard polling cadence.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		PollInterval: 5 * time.Second,
		PollCeiling:  300 * time.Second,
	}
}

// FallbackController drives one submitted job to a terminal state:
// live streaming first, then status polling, then the finished-document
// download. Streaming failures never fail the job on their own; only a
// job that fails every strategy is reported as failed.
type FallbackController struct {
	converter driven.Converter
	engine    *Reconstructor
	reporter  driven.ProgressReporter
	cfg       FallbackConfig
}

// NewFallbackController creates a controller around the given engine.
func NewFallbackController(converter driven.Converter, engine *Reconstructor, reporter driven.ProgressReporter, cfg FallbackConfig) *FallbackController {
	if reporter == nil {
		reporter = driven.NopReporter{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultFallbackConfig().PollInterval
	}
	if cfg.PollCeiling <= 0 {
		cfg.PollCeiling = DefaultFallbackConfig().PollCeiling
	}
	return &FallbackController{
		converter: converter,
		engine:    engine,
		reporter:  reporter,
		cfg:       cfg,
	}
}

// Convert retrieves the output for a submitted job, walking the state
// machine until Done or Failed. The sink is owned by this job for the
// duration of the call.
//
// A nil error means output (possibly partial, possibly none for the
// degraded not-ready case) was settled into the sink. A non-nil error
// means every strategy failed.
func (f *FallbackController) Convert(ctx context.Context, jobID string, sink driven.OutputSink) (domain.ConversionOutcome, error) {
	var (
		streamed   domain.StreamOutcome
		lastStatus domain.JobStatus
		outcome    domain.ConversionOutcome
		failure    error
	)

	state := stateStreaming
	for {
		switch state {
		case stateStreaming:
			streamed, failure = f.runStream(ctx, jobID, sink)
			if failure == nil && streamed.Complete {
				outcome = domain.ConversionOutcome{
					PagesReceived:  streamed.PagesReceived,
					PagesTotal:     streamed.PagesTotal,
					DecodeFailures: streamed.DecodeFailures,
					Via:            domain.ViaStream,
				}
				state = stateDone
				break
			}
			if ctx.Err() != nil {
				failure = ctx.Err()
				state = stateFailed
				break
			}
			if failure != nil {
				f.reporter.Warnf("stream failed for %s: %v", jobID, failure)
				failure = nil
			}
			f.reporter.FallbackEntered(jobID)
			state = statePolling

		case statePolling:
			lastStatus, failure = f.poll(ctx, jobID)
			if failure != nil {
				state = stateFailed
				break
			}
			state = stateDownloading

		case stateDownloading:
			outcome, failure = f.download(ctx, jobID, sink, streamed, lastStatus)
			if failure != nil {
				state = stateFailed
				break
			}
			state = stateDone

		case stateDone:
			return outcome, nil

		case stateFailed:
			return domain.ConversionOutcome{
				PagesReceived:  streamed.PagesReceived,
				PagesTotal:     streamed.PagesTotal,
				DecodeFailures: streamed.DecodeFailures,
				Via:            domain.ViaNone,
			}, failure
		}
	}
}

// runStream opens the live stream and runs the reconstruction engine
// over it. The stream is released before returning regardless of how
// consumption ended.
func (f *FallbackController) runStream(ctx context.Context, jobID string, sink driven.OutputSink) (domain.StreamOutcome, error) {
	stream, err := f.converter.OpenStream(ctx, jobID)
	if err != nil {
		return domain.StreamOutcome{}, err
	}
	defer stream.Close()

	return f.engine.Run(ctx, jobID, stream, sink)
}

// poll watches the remote status until the job completes, the service
// reports a failure, or the ceiling elapses. Status call failures are
// retried on the normal cadence; they only matter if they outlast the
// ceiling, and even then the download is still attempted.
func (f *FallbackController) poll(ctx context.Context, jobID string) (domain.JobStatus, error) {
	deadline := time.Now().Add(f.cfg.PollCeiling)
	var last domain.JobStatus

	for {
		status, err := f.converter.Status(ctx, jobID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			f.reporter.Warnf("status poll for %s: %v", jobID, err)
		case status.Status == domain.StatusFailed:
			return status, &domain.RemoteError{JobID: jobID, Detail: status.ErrorDetail}
		default:
			last = status
			f.reporter.PollProgress(jobID, status)
			if status.Status == domain.StatusCompleted {
				return last, nil
			}
		}

		if time.Now().After(deadline) {
			f.reporter.Warnf("poll ceiling reached for %s, downloading anyway", jobID)
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(f.cfg.PollInterval):
		}
	}
}

// download fetches the finished document and persists it whole. A
// not-ready response is degraded, not fatal: any pages salvaged from
// the stream stay on disk and in the outcome.
func (f *FallbackController) download(ctx context.Context, jobID string, sink driven.OutputSink, streamed domain.StreamOutcome, last domain.JobStatus) (domain.ConversionOutcome, error) {
	f.reporter.DownloadStarted(jobID)

	text, err := f.converter.DownloadFinal(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			if streamed.PagesReceived > 0 {
				f.reporter.Warnf("final document not ready for %s, keeping %d streamed pages", jobID, streamed.PagesReceived)
				return domain.ConversionOutcome{
					PagesReceived:  streamed.PagesReceived,
					PagesTotal:     streamed.PagesTotal,
					DecodeFailures: streamed.DecodeFailures,
					Via:            domain.ViaStream,
				}, nil
			}
			f.reporter.Warnf("final document not ready for %s, nothing retrieved", jobID)
			return domain.ConversionOutcome{Via: domain.ViaNone}, nil
		}
		return domain.ConversionOutcome{Via: domain.ViaNone}, fmt.Errorf("failed via both streaming and fallback: %w", err)
	}

	if err := sink.Rewrite(text); err != nil {
		return domain.ConversionOutcome{Via: domain.ViaNone}, fmt.Errorf("persist downloaded document: %w", err)
	}

	return domain.ConversionOutcome{
		PagesReceived:  last.PagesDone,
		PagesTotal:     last.PagesTotal,
		DecodeFailures: streamed.DecodeFailures,
		Via:            domain.ViaDownload,
	}, nil
}
