package driven

// OutputSink persists the reconstructed document for one job. A sink is
// acquired per job and closed when the job finishes.
type OutputSink interface {
	// Rewrite replaces the entire sink contents with text. The
	// replacement is atomic: a failure mid-write leaves the previous
	// contents intact, never a truncated mix of old and new.
	Rewrite(text string) error

	// Path returns the destination the sink writes to.
	Path() string

	// Close releases the sink.
	Close() error
}

// SinkFactory opens output sinks. Opening creates the destination file
// (and its parent directory) so the output path exists from the moment
// a job starts.
type SinkFactory interface {
	Open(path string) (OutputSink, error)
}
