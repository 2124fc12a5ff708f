package mathpix

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

const (
	// scanBuffer is the initial line buffer size.
	scanBuffer = 64 * 1024

	// maxEventSize caps a single stream line. A page of dense markdown
	// with embedded tables stays well under this.
	maxEventSize = 16 * 1024 * 1024
)

// Ensure Stream implements the port.
var _ driven.PageStream = (*Stream)(nil)

// Stream reads NDJSON page events off an open response body. It owns
// the connection and the session deadline; Close releases both.
type Stream struct {
	jobID   string
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func newStream(jobID string, body io.ReadCloser, cancel context.CancelFunc) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, scanBuffer), maxEventSize)
	return &Stream{
		jobID:   jobID,
		body:    body,
		scanner: scanner,
		cancel:  cancel,
	}
}

// Next returns the next page event. Blank lines are skipped. A line
// that is not valid JSON yields a *domain.DecodeError and leaves the
// stream readable; a transport failure yields a *domain.StreamError.
// A cleanly closed stream yields io.EOF.
func (s *Stream) Next(ctx context.Context) (domain.PageEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.PageEvent{}, err
		}

		if !s.scanner.Scan() {
			err := s.scanner.Err()
			if err == nil {
				return domain.PageEvent{}, io.EOF
			}
			if ctx.Err() != nil {
				return domain.PageEvent{}, ctx.Err()
			}
			return domain.PageEvent{}, &domain.StreamError{
				JobID: s.jobID,
				Kind:  classifyStreamKind(err),
				Err:   err,
			}
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return domain.PageEvent{}, &domain.DecodeError{Line: truncateLine(line), Err: err}
		}
		return domain.PageEvent{
			Index: ev.PageIdx,
			Text:  ev.Text,
			Total: ev.PDFSelectedLen,
		}, nil
	}
}

// Close releases the connection and the session deadline. Safe to call
// more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
		s.cancel()
	})
	return s.closeErr
}
