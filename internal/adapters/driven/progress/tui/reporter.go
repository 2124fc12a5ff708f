// Package tui renders conversion progress as a live terminal view using
// Bubbletea: a spinner, the per-document page bar, and the tally of
// finished documents. It implements driven.ProgressReporter by
// translating reporter events into program messages.
//
// The view writes to stderr; stdout stays clean for the final summary.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// Ensure Reporter implements the interface.
var _ driven.ProgressReporter = (*Reporter)(nil)

// Reporter forwards progress events into a running Bubbletea program.
type Reporter struct {
	program *tea.Program
}

// NewReporter creates the progress view. Run must be called on the
// main goroutine while the batch runs elsewhere.
func NewReporter() *Reporter {
	program := tea.NewProgram(newModel(), tea.WithOutput(os.Stderr))
	return &Reporter{program: program}
}

// Run blocks rendering the view until the batch finishes or the user
// aborts. It returns nil on a user abort; the caller decides what an
// early exit means for the run context.
func (r *Reporter) Run() error {
	if _, err := r.program.Run(); err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	return nil
}

// Finish asks the view to quit. Safe to call more than once.
func (r *Reporter) Finish() {
	r.program.Send(finishMsg{})
}

func (r *Reporter) BatchStarted(jobs, pagesExpected int) {
	r.program.Send(batchStartedMsg{jobs: jobs, pagesExpected: pagesExpected})
}

func (r *Reporter) JobStarted(source string, index, total int) {
	r.program.Send(jobStartedMsg{source: source, index: index, total: total})
}

func (r *Reporter) JobSubmitted(source, remoteID string) {
	r.program.Send(jobSubmittedMsg{source: source, remoteID: remoteID})
}

func (r *Reporter) TotalKnown(remoteID string, total int) {
	r.program.Send(totalKnownMsg{remoteID: remoteID, total: total})
}

func (r *Reporter) PageReceived(remoteID string, index, received, total int) {
	r.program.Send(pageReceivedMsg{remoteID: remoteID, index: index, received: received, total: total})
}

func (r *Reporter) DecodeFailure(remoteID string, err error) {
	r.program.Send(noteMsg{text: fmt.Sprintf("skipped malformed stream event: %v", err)})
}

func (r *Reporter) StreamInterrupted(remoteID string, err error, received, total int) {
	r.program.Send(streamInterruptedMsg{remoteID: remoteID, err: err, received: received, total: total})
	if err != nil {
		r.program.Send(noteMsg{text: fmt.Sprintf("stream interrupted: %v", err)})
	}
}

func (r *Reporter) FallbackEntered(remoteID string) {
	r.program.Send(fallbackEnteredMsg{remoteID: remoteID})
}

func (r *Reporter) PollProgress(remoteID string, status domain.JobStatus) {
	r.program.Send(pollProgressMsg{remoteID: remoteID, status: status})
}

func (r *Reporter) DownloadStarted(remoteID string) {
	r.program.Send(downloadStartedMsg{remoteID: remoteID})
}

func (r *Reporter) JobFinished(result domain.JobResult) {
	r.program.Send(jobFinishedMsg{result: result})
}

func (r *Reporter) BatchFinished(summary domain.BatchSummary) {
	r.program.Send(batchFinishedMsg{summary: summary})
}

func (r *Reporter) Debugf(format string, args ...any) {}

func (r *Reporter) Warnf(format string, args ...any) {
	r.program.Send(noteMsg{text: fmt.Sprintf(format, args...)})
}

func (r *Reporter) Errorf(format string, args ...any) {
	r.program.Send(noteMsg{text: fmt.Sprintf(format, args...), isErr: true})
}
