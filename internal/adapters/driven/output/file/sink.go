package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SinkFactory = (*Factory)(nil)

// Factory opens file-backed output sinks.
type Factory struct{}

// NewFactory creates a sink factory writing to the local filesystem.
func NewFactory() *Factory {
	return &Factory{}
}

// Open creates the destination file (and its parent directory) and
// returns a sink for it. An existing file is truncated, matching the
// converter's rewrite-from-scratch output model.
func (f *Factory) Open(path string) (driven.OutputSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	// Create eagerly so the destination exists from job start, even if
	// no page ever arrives.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &Sink{path: path}, nil
}

// Sink is a file-backed implementation of driven.OutputSink.
type Sink struct {
	path string
}

// Rewrite atomically replaces the file contents with text. The new
// contents are written to a temp file in the same directory, synced,
// and renamed over the destination.
func (s *Sink) Rewrite(text string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// CreateTemp defaults to 0600; keep the destination's usual mode.
	err = tmp.Chmod(0o644)
	if err == nil {
		_, err = tmp.WriteString(text)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}

// Path returns the destination path.
func (s *Sink) Path() string {
	return s.path
}

// Close releases the sink. Rewrites are self-contained, so there is
// nothing to flush.
func (s *Sink) Close() error {
	return nil
}
