package driven

import "github.com/pagestream/pagestream-cli/internal/core/domain"

// ProgressReporter receives conversion lifecycle events. The core never
// prints; every observable moment of a run flows through this interface
// and the installed reporter decides how to render it.
//
// Reporters must tolerate being called from the conversion goroutine
// while rendering elsewhere. All methods are fire-and-forget.
type ProgressReporter interface {
	// BatchStarted announces a run of jobs documents. pagesExpected is
	// the pre-computed page total, 0 when probing was disabled.
	BatchStarted(jobs, pagesExpected int)

	// JobStarted announces job index (1-based) of total starting.
	JobStarted(source string, index, total int)

	// JobSubmitted reports the remote identifier assigned to source.
	JobSubmitted(source, remoteID string)

	// TotalKnown reports the page total announced for a job. It fires
	// again if the total grows.
	TotalKnown(remoteID string, total int)

	// PageReceived reports one page arriving on the stream. received
	// counts distinct pages so far; total is 0 while unknown.
	PageReceived(remoteID string, index, received, total int)

	// DecodeFailure reports a malformed stream event that was skipped.
	DecodeFailure(remoteID string, err error)

	// StreamInterrupted reports the stream ending before the document
	// completed. err is nil when the service closed the stream cleanly.
	StreamInterrupted(remoteID string, err error, received, total int)

	// FallbackEntered reports the switch from streaming to polling.
	FallbackEntered(remoteID string)

	// PollProgress reports one status poll result.
	PollProgress(remoteID string, status domain.JobStatus)

	// DownloadStarted reports the switch from polling to downloading.
	DownloadStarted(remoteID string)

	// JobFinished reports a job reaching a terminal state.
	JobFinished(result domain.JobResult)

	// BatchFinished reports the whole run completing.
	BatchFinished(summary domain.BatchSummary)

	// Debugf, Warnf and Errorf carry free-form diagnostics. Errorf is
	// for failures the user must see regardless of verbosity.
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopReporter discards every event. Embed it to implement only the
// methods a reporter cares about.
type NopReporter struct{}

var _ ProgressReporter = NopReporter{}

func (NopReporter) BatchStarted(jobs, pagesExpected int) {}

func (NopReporter) JobStarted(source string, index, total int) {}

func (NopReporter) JobSubmitted(source, remoteID string) {}

func (NopReporter) TotalKnown(remoteID string, total int) {}

func (NopReporter) PageReceived(remoteID string, index, received, total int) {}

func (NopReporter) DecodeFailure(remoteID string, err error) {}

func (NopReporter) StreamInterrupted(remoteID string, err error, received, total int) {}

func (NopReporter) FallbackEntered(remoteID string) {}

func (NopReporter) PollProgress(remoteID string, status domain.JobStatus) {}

func (NopReporter) DownloadStarted(remoteID string) {}

func (NopReporter) JobFinished(result domain.JobResult) {}

func (NopReporter) BatchFinished(summary domain.BatchSummary) {}

func (NopReporter) Debugf(format string, args ...any) {}

func (NopReporter) Warnf(format string, args ...any) {}

func (NopReporter) Errorf(format string, args ...any) {}
