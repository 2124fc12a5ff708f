// Package term renders conversion progress as plain terminal output.
//
// In verbose mode the reporter defers to the global logger and stays
// quiet itself; otherwise it prints compact progress lines with
// carriage-return updates for per-page counts. This is the reporter
// used when stdout is not a TTY or the full-screen view is disabled.
package term

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
	"github.com/pagestream/pagestream-cli/internal/logger"
)

// Ensure Reporter implements the interface.
var _ driven.ProgressReporter = (*Reporter)(nil)

// Reporter prints conversion progress to a writer, one batch at a time.
// Jobs run strictly sequentially, so it tracks a single current
// document.
type Reporter struct {
	out io.Writer

	mu       sync.Mutex
	current  string // basename of the document in flight
	jobs     int    // documents in the running batch
	lineOpen bool   // a \r progress line needs terminating
}

// NewReporter creates a reporter writing to out. A nil out defaults to
// stderr so progress never mixes with converted output on stdout.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	return &Reporter{out: out}
}

// BatchStarted announces the run size.
func (r *Reporter) BatchStarted(jobs, pagesExpected int) {
	r.mu.Lock()
	r.jobs = jobs
	r.mu.Unlock()

	if pagesExpected > 0 {
		logger.Info("Converting %d documents (%d pages expected)", jobs, pagesExpected)
	} else {
		logger.Info("Converting %d documents", jobs)
	}
}

// JobStarted announces the next document.
func (r *Reporter) JobStarted(source string, index, total int) {
	base := filepath.Base(source)

	r.mu.Lock()
	r.current = base
	r.mu.Unlock()

	logger.Info("Processing %d/%d: %s", index, total, base)
	if !logger.IsVerbose() && total > 1 {
		fmt.Fprintf(r.out, "\nProcessing %d/%d: %s\n", index, total, base)
	}
}

// JobSubmitted reports the assigned remote identifier.
func (r *Reporter) JobSubmitted(source, remoteID string) {
	logger.Info("[%s] submitted as %s", filepath.Base(source), remoteID)
}

// TotalKnown reports the announced page count.
func (r *Reporter) TotalKnown(remoteID string, total int) {
	logger.Info("[%s] document has %d pages", r.name(), total)
}

// PageReceived updates the in-place page counter.
func (r *Reporter) PageReceived(remoteID string, index, received, total int) {
	logger.Info("[%s] received page %d (%d/%s)", r.name(), index, received, totalLabel(total))

	if logger.IsVerbose() {
		return
	}
	r.mu.Lock()
	r.lineOpen = true
	r.mu.Unlock()
	fmt.Fprintf(r.out, "\r%s: %d/%s pages", r.name(), received, totalLabel(total))
}

// DecodeFailure reports a skipped malformed event.
func (r *Reporter) DecodeFailure(remoteID string, err error) {
	logger.Warn("[%s] skipping malformed stream event: %v", r.name(), err)
}

// StreamInterrupted reports the stream ending early.
func (r *Reporter) StreamInterrupted(remoteID string, err error, received, total int) {
	r.breakLine()
	if err != nil {
		logger.Warn("[%s] stream interrupted after %d/%s pages: %v", r.name(), received, totalLabel(total), err)
		return
	}
	logger.Warn("[%s] stream ended with %d/%s pages", r.name(), received, totalLabel(total))
}

// FallbackEntered reports the switch to polling.
func (r *Reporter) FallbackEntered(remoteID string) {
	r.breakLine()
	logger.Info("[%s] falling back to status polling", r.name())
	if !logger.IsVerbose() {
		fmt.Fprintf(r.out, "%s: waiting for remote conversion...\n", r.name())
	}
}

// PollProgress reports one status snapshot.
func (r *Reporter) PollProgress(remoteID string, status domain.JobStatus) {
	logger.Info("[%s] status: %s (%d/%d pages)", r.name(), status.Status, status.PagesDone, status.PagesTotal)
}

// DownloadStarted reports the finished-document download beginning.
func (r *Reporter) DownloadStarted(remoteID string) {
	logger.Info("[%s] downloading finished document", r.name())
}

// JobFinished prints the per-document outcome line.
func (r *Reporter) JobFinished(result domain.JobResult) {
	r.breakLine()
	base := filepath.Base(result.Source)

	if result.Success {
		logger.Info("[%s] completed and saved to %s", base, result.OutputPath)
		if !logger.IsVerbose() {
			if result.Via == domain.ViaDownload {
				fmt.Fprintf(r.out, "✅ %s → %s (fallback method)\n", base, result.OutputPath)
			} else {
				fmt.Fprintf(r.out, "✅ %s → %s\n", base, result.OutputPath)
			}
		}
		return
	}

	logger.Error("[%s] conversion failed: %s", base, result.Error)
	if !logger.IsVerbose() {
		fmt.Fprintf(r.out, "❌ %s: %s\n", base, result.Error)
	}
}

// BatchFinished reports run totals to the verbose log. The user-facing
// summary block is printed by the CLI from the returned summary.
func (r *Reporter) BatchFinished(summary domain.BatchSummary) {
	r.breakLine()
	logger.Info("Batch complete: %d/%d documents converted successfully", summary.Succeeded(), summary.Jobs())
	logger.Info("Processed %d pages", summary.PagesReceived())
}

// Debugf forwards a diagnostic message.
func (r *Reporter) Debugf(format string, args ...any) {
	logger.Debug(format, args...)
}

// Warnf forwards a warning.
func (r *Reporter) Warnf(format string, args ...any) {
	logger.Warn(format, args...)
}

// Errorf surfaces a failure regardless of verbosity.
func (r *Reporter) Errorf(format string, args ...any) {
	r.breakLine()
	logger.Error(format, args...)
}

// name returns the basename of the document in flight.
func (r *Reporter) name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return "document"
	}
	return r.current
}

// breakLine terminates an open \r progress line.
func (r *Reporter) breakLine() {
	r.mu.Lock()
	open := r.lineOpen
	r.lineOpen = false
	r.mu.Unlock()

	if open && !logger.IsVerbose() {
		fmt.Fprintln(r.out)
	}
}

// totalLabel renders a possibly unknown page total.
func totalLabel(total int) string {
	if total <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d", total)
}
