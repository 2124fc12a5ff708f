package mathpix

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// maxBodySnippet bounds how much of an error response body is kept for
// error messages.
const maxBodySnippet = 512

// classifyStreamKind maps a mid-stream read failure onto the domain
// stream error kinds. Timeouts cover both the session deadline and
// network-level read deadlines; everything else that kills an
// established stream counts as a dropped connection.
func classifyStreamKind(err error) domain.StreamErrorKind {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.StreamReadTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return domain.StreamReadTimeout
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return domain.StreamConnReset
	default:
		return domain.StreamConnReset
	}
}

// bodySnippet reads a short prefix of an error response body for
// inclusion in error messages.
func bodySnippet(r io.Reader) string {
	buf, err := io.ReadAll(io.LimitReader(r, maxBodySnippet))
	if err != nil || len(buf) == 0 {
		return ""
	}
	return strings.TrimSpace(string(buf))
}

// statusDetail describes a rejected response: the body if the service
// sent one, the standard status text otherwise.
func statusDetail(resp *http.Response) string {
	if s := bodySnippet(resp.Body); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// truncateLine shortens a raw stream line for decode error messages.
func truncateLine(line string) string {
	const max = 120
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
