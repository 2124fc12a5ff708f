package mathpix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// errReader yields some content and then a read failure.
type errReader struct {
	io.Reader
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err == io.EOF {
		return n, r.err
	}
	return n, err
}

func streamOver(body string) *Stream {
	return newStream("job-1", io.NopCloser(strings.NewReader(body)), func() {})
}

// TestStream_Next tests event decoding in arrival order
func TestStream_Next(t *testing.T) {
	body := `{"page_idx": 2, "text": "second", "pdf_selected_len": 2}` + "\n" +
		"\n" +
		`{"page_idx": 1, "text": "first", "pdf_selected_len": 2}` + "\n"
	s := streamOver(body)
	defer s.Close()

	ev, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PageEvent{Index: 2, Text: "second", Total: 2}, ev)

	ev, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PageEvent{Index: 1, Text: "first", Total: 2}, ev)

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

// TestStream_MissingFieldsDefault tests events with absent optional fields
func TestStream_MissingFieldsDefault(t *testing.T) {
	s := streamOver(`{"page_idx": 3}` + "\n")
	defer s.Close()

	ev, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PageEvent{Index: 3, Text: "", Total: 0}, ev)
}

// TestStream_MalformedLineLeavesStreamReadable tests decode error recovery
func TestStream_MalformedLineLeavesStreamReadable(t *testing.T) {
	body := "{not json}\n" + `{"page_idx": 1, "text": "ok", "pdf_selected_len": 1}` + "\n"
	s := streamOver(body)
	defer s.Close()

	_, err := s.Next(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsDecodeError(err))
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "{not json}", decodeErr.Line)

	ev, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ev.Index)
}

// TestStream_LongLineTruncatedInError tests decode error line truncation
func TestStream_LongLineTruncatedInError(t *testing.T) {
	s := streamOver("{" + strings.Repeat("x", 500) + "\n")
	defer s.Close()

	_, err := s.Next(context.Background())
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.LessOrEqual(t, len(decodeErr.Line), 123)
	assert.True(t, strings.HasSuffix(decodeErr.Line, "..."))
}

// TestStream_LargeEventFits tests pages bigger than the default scan buffer
func TestStream_LargeEventFits(t *testing.T) {
	text := strings.Repeat("A", 2*scanBuffer)
	s := streamOver(fmt.Sprintf(`{"page_idx": 1, "text": %q, "pdf_selected_len": 1}`+"\n", text))
	defer s.Close()

	ev, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, ev.Text, 2*scanBuffer)
}

// TestStream_ReadFailureClassified tests transport error mapping
func TestStream_ReadFailureClassified(t *testing.T) {
	body := &errReader{
		Reader: strings.NewReader(`{"page_idx": 1, "text": "x", "pdf_selected_len": 3}` + "\n"),
		err:    syscall.ECONNRESET,
	}
	s := newStream("job-1", io.NopCloser(body), func() {})
	defer s.Close()

	_, err := s.Next(context.Background())
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	se, ok := domain.AsStreamError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StreamConnReset, se.Kind)
	assert.Equal(t, "job-1", se.JobID)
}

// TestStream_CancelledContext tests that cancellation wins over transport errors
func TestStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := streamOver(`{"page_idx": 1}` + "\n")
	defer s.Close()

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestStream_CloseIdempotent tests repeated Close calls
func TestStream_CloseIdempotent(t *testing.T) {
	cancelled := 0
	s := newStream("job-1", io.NopCloser(strings.NewReader("")), func() { cancelled++ })

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, cancelled)
}

// TestClassifyStreamKind tests the transport error classification table
func TestClassifyStreamKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.StreamErrorKind
	}{
		{"session deadline", context.DeadlineExceeded, domain.StreamReadTimeout},
		{"wrapped deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), domain.StreamReadTimeout},
		{"connection reset", syscall.ECONNRESET, domain.StreamConnReset},
		{"broken pipe", syscall.EPIPE, domain.StreamConnReset},
		{"unexpected eof", io.ErrUnexpectedEOF, domain.StreamConnReset},
		{"anything else", errors.New("stream hiccup"), domain.StreamConnReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, classifyStreamKind(tt.err))
		})
	}
}
