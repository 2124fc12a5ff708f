package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent conversion failures the core logic acts on.
// These are distinct from infrastructure errors.
var (
	// ErrNotReady indicates the finished document has not been produced
	// by the service yet.
	ErrNotReady = errors.New("document not ready")

	// ErrNoCredentials indicates the API credentials are not configured.
	ErrNoCredentials = errors.New("missing API credentials")

	// ErrNoDocuments indicates no convertible documents were found.
	ErrNoDocuments = errors.New("no documents found")

	// ErrInterrupted indicates the run was cancelled from outside.
	ErrInterrupted = errors.New("interrupted")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// StreamErrorKind classifies how a live stream failed.
type StreamErrorKind int

const (
	// StreamHTTPStatus means the service rejected the stream request.
	StreamHTTPStatus StreamErrorKind = iota

	// StreamReadTimeout means no event arrived within the read window.
	StreamReadTimeout

	// StreamConnReset means the connection dropped mid-stream.
	StreamConnReset
)

// String returns the kind's wire-friendly name.
func (k StreamErrorKind) String() string {
	switch k {
	case StreamHTTPStatus:
		return "http status"
	case StreamReadTimeout:
		return "read timeout"
	case StreamConnReset:
		return "connection reset"
	default:
		return "unknown"
	}
}

// SubmissionError reports a failed document submission. No remote job
// exists when submission fails, so there is nothing to fall back to.
type SubmissionError struct {
	// Source is the local path that failed to submit.
	Source string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit %s: HTTP %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submit %s: %v", e.Source, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// StreamError reports a live stream failure. Kind determines whether
// pages already received may be kept.
type StreamError struct {
	// JobID is the remote job whose stream failed.
	JobID string

	// Kind classifies the failure.
	Kind StreamErrorKind

	// Err is the underlying cause.
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %s: %v", e.JobID, e.Kind, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Salvageable reports whether pages received before the failure remain
// usable. A rejected request means the stream never carried data;
// timeouts and resets interrupt an otherwise valid stream.
func (e *StreamError) Salvageable() bool {
	return e.Kind == StreamReadTimeout || e.Kind == StreamConnReset
}

// StatusError reports a failed status poll. Polling is retried, so a
// single StatusError never fails a job on its own.
type StatusError struct {
	JobID string
	Err   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %s: %v", e.JobID, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// DownloadError reports a failed finished-document download.
type DownloadError struct {
	JobID string
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.JobID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DecodeError reports a single malformed stream event. Decode failures
// are skipped; they never terminate a stream.
type DecodeError struct {
	// Line is the offending payload, truncated for display.
	Line string

	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RemoteError reports that the service itself marked a job as failed.
type RemoteError struct {
	JobID string

	// Detail is the failure message reported by the service.
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("conversion %s failed remotely: %s", e.JobID, e.Detail)
}

// AsStreamError unwraps err to a StreamError if one is in the chain.
func AsStreamError(err error) (*StreamError, bool) {
	var se *StreamError
	ok := errors.As(err, &se)
	return se, ok
}

// IsDecodeError reports whether err is a skipped-event decode failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
