package domain

import "time"

// Job describes one document handed to the conversion service.
type Job struct {
	// Source is the local path of the document to convert.
	Source string

	// OutputPath is where the reconstructed text is written.
	OutputPath string

	// RemoteID is the identifier assigned by the service at submission.
	// Empty until submission succeeds.
	RemoteID string

	// Options is passed through to the service unchanged.
	Options Options
}

// Remote status values reported by the conversion service.
const (
	StatusCompleted  = "completed"
	StatusFailed     = "error"
	StatusSplit      = "split"
	StatusProcessing = "processing"
)

// JobStatus is one snapshot of a submitted job's remote state.
type JobStatus struct {
	// Status is the raw remote status string.
	Status string

	// PagesTotal is the page count known to the service, 0 if not yet split.
	PagesTotal int

	// PagesDone is how many pages the service has finished.
	PagesDone int

	// PercentDone is the remote completion estimate.
	PercentDone float64

	// ErrorDetail carries the remote failure message when Status is "error".
	ErrorDetail string
}

// Terminal reports whether the remote side will make no further progress.
func (s JobStatus) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// ResultVia identifies which retrieval strategy produced a job's output.
type ResultVia string

const (
	// ViaStream means the output was reconstructed from the live stream.
	ViaStream ResultVia = "stream"

	// ViaDownload means the output came from the finished-document download.
	ViaDownload ResultVia = "download"

	// ViaNone means no output was retrieved at all.
	ViaNone ResultVia = "none"
)

// ConversionOutcome summarises what the streaming and fallback phases
// retrieved for one job, before the final consistency check.
type ConversionOutcome struct {
	// PagesReceived is how many distinct pages were obtained.
	PagesReceived int

	// PagesTotal is the last known page count, 0 if never learned.
	PagesTotal int

	// DecodeFailures counts malformed stream events that were skipped.
	DecodeFailures int

	// Via records the strategy that produced the output.
	Via ResultVia
}

// JobResult is the immutable record emitted once a job finishes.
// It is what batch summaries and the history store are built from.
type JobResult struct {
	// Source is the local path that was converted.
	Source string

	// RemoteID is the service-assigned job identifier, empty if
	// submission itself failed.
	RemoteID string

	// OutputPath is the destination the job wrote (or would have
	// written) its output to.
	OutputPath string

	// PagesReceived and PagesTotal mirror the conversion outcome.
	PagesReceived int
	PagesTotal    int

	// Success is true when output was retrieved and the final status
	// check (if performed) did not contradict it.
	Success bool

	// Via records the strategy that produced the output.
	Via ResultVia

	// Error holds the failure detail when Success is false.
	Error string

	// FinishedAt is when the job reached a terminal state.
	FinishedAt time.Time
}

// BatchSummary aggregates the results of one sequential batch run.
type BatchSummary struct {
	// RunID identifies the run in the history store. Empty until the
	// run is persisted.
	RunID string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// PagesExpected is the pre-computed page total for the batch,
	// 0 when probing was disabled.
	PagesExpected int

	// Results holds one entry per input document, in input order.
	Results []JobResult
}

// Jobs returns the number of documents in the batch.
func (s BatchSummary) Jobs() int { return len(s.Results) }

// Succeeded returns the number of successful conversions.
func (s BatchSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// PagesReceived returns the total pages obtained across the batch.
func (s BatchSummary) PagesReceived() int {
	n := 0
	for _, r := range s.Results {
		n += r.PagesReceived
	}
	return n
}
