package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// Reconstructor rebuilds a document from its live page event stream.
// Events arrive in whatever order the service emits them; the engine
// keeps a per-job page set and rewrites the sink after every event so
// the output file is always a coherent snapshot of the pages so far.
type Reconstructor struct {
	reporter driven.ProgressReporter
}

// NewReconstructor creates a reconstruction engine.
func NewReconstructor(reporter driven.ProgressReporter) *Reconstructor {
	if reporter == nil {
		reporter = driven.NopReporter{}
	}
	return &Reconstructor{reporter: reporter}
}

// Run consumes the stream until the document completes, the service
// closes the stream, or the transport fails.
//
// The returned outcome always reflects what was received. Run returns a
// nil error in three cases: the document completed, the stream ended
// early but cleanly, or the stream failed in a salvageable way after at
// least one page arrived. All other failures are returned to the caller
// with whatever pages already made it into the sink.
func (r *Reconstructor) Run(ctx context.Context, jobID string, stream driven.PageStream, sink driven.OutputSink) (domain.StreamOutcome, error) {
	pages := domain.NewPageSet()
	decodeFailures := 0

	result := func(complete bool) domain.StreamOutcome {
		return domain.StreamOutcome{
			PagesReceived:  pages.Received(),
			PagesTotal:     pages.Expected(),
			DecodeFailures: decodeFailures,
			Complete:       complete,
		}
	}

	for {
		ev, err := stream.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// Service closed the stream before the document
				// completed. Not an error: the fallback takes over.
				r.reporter.StreamInterrupted(jobID, nil, pages.Received(), pages.Expected())
				return result(false), nil

			case domain.IsDecodeError(err):
				decodeFailures++
				r.reporter.DecodeFailure(jobID, err)
				continue
			}

			if se, ok := domain.AsStreamError(err); ok && se.Salvageable() && pages.Received() > 0 {
				// Keep what arrived. A reset can interrupt the write
				// cycle, so force a final rewrite of the salvaged pages.
				if se.Kind == domain.StreamConnReset {
					if werr := sink.Rewrite(pages.Materialise()); werr != nil {
						return result(false), fmt.Errorf("persist salvaged pages: %w", werr)
					}
				}
				r.reporter.StreamInterrupted(jobID, err, pages.Received(), pages.Expected())
				return result(false), nil
			}

			return result(false), err
		}

		// 1. Fold in the announced total. Later events may omit or
		// understate it; the page set only ever raises it.
		if pages.ObserveTotal(ev.Total) {
			r.reporter.TotalKnown(jobID, pages.Expected())
		}

		// 2. Record the page text. Last write wins on re-delivery.
		pages.Put(ev.Index, ev.Text)
		r.reporter.PageReceived(jobID, ev.Index, pages.Received(), pages.Expected())

		// 3. Rewrite the sink so the file reflects every page so far.
		if err := sink.Rewrite(pages.Materialise()); err != nil {
			return result(false), fmt.Errorf("persist page %d: %w", ev.Index, err)
		}

		// 4. Stop as soon as every page through the total is present.
		if pages.Complete() {
			return result(true), nil
		}
	}
}
