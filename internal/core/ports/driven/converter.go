package driven

import (
	"context"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// Converter is the remote conversion service. Implementations translate
// these four operations into service API calls and map failures onto
// the domain error taxonomy.
type Converter interface {
	// Submit uploads the document at source and returns the remote job
	// identifier. Failures are reported as *domain.SubmissionError;
	// no job exists when Submit fails.
	Submit(ctx context.Context, source string, options domain.Options) (string, error)

	// Status fetches one remote status snapshot for a job. Failures
	// are reported as *domain.StatusError.
	Status(ctx context.Context, jobID string) (domain.JobStatus, error)

	// OpenStream opens the live page event stream for a job. A
	// rejected request is reported as *domain.StreamError with kind
	// StreamHTTPStatus. The caller owns the returned stream and must
	// close it.
	OpenStream(ctx context.Context, jobID string) (PageStream, error)

	// DownloadFinal fetches the finished document text. It returns
	// domain.ErrNotReady when the service has not produced the final
	// artifact; transport failures are *domain.DownloadError.
	DownloadFinal(ctx context.Context, jobID string) (string, error)
}

// PageStream is a live, producer-driven sequence of page events for one
// job. Events arrive in service order, which is not index order.
//
// Next blocks until an event arrives, then returns it. It returns:
//
//   - io.EOF when the service closes the stream cleanly
//   - *domain.DecodeError for a malformed event; the stream remains
//     usable and the caller should keep reading
//   - *domain.StreamError when the transport fails; the stream is dead
//
// Close releases the underlying connection. It is safe to call after
// Next has returned an error.
type PageStream interface {
	Next(ctx context.Context) (domain.PageEvent, error)
	Close() error
}

// DocumentLister retrieves pages of previously submitted documents.
type DocumentLister interface {
	// ListDocuments fetches one page of documents matching the query.
	ListDocuments(ctx context.Context, query domain.ListQuery) (domain.DocumentPage, error)
}
