package services

import (
	"context"
	"io"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// streamStep is one scripted Next result: an event or an error.
type streamStep struct {
	ev  domain.PageEvent
	err error
}

// scriptedStream implements driven.PageStream from a fixed script.
// Once the script is exhausted it reports a clean end of stream.
type scriptedStream struct {
	steps  []streamStep
	pos    int
	closed bool
}

func (s *scriptedStream) Next(ctx context.Context) (domain.PageEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.PageEvent{}, err
	}
	if s.pos >= len(s.steps) {
		return domain.PageEvent{}, io.EOF
	}
	step := s.steps[s.pos]
	s.pos++
	if step.err != nil {
		return domain.PageEvent{}, step.err
	}
	return step.ev, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// memorySink implements driven.OutputSink in memory, recording every
// rewrite so tests can assert on the write sequence.
type memorySink struct {
	path       string
	contents   string
	rewrites   []string
	rewriteErr error
	closed     bool
}

func (s *memorySink) Rewrite(text string) error {
	if s.rewriteErr != nil {
		return s.rewriteErr
	}
	s.contents = text
	s.rewrites = append(s.rewrites, text)
	return nil
}

func (s *memorySink) Path() string { return s.path }

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

// memorySinkFactory hands out memory sinks and remembers them.
type memorySinkFactory struct {
	sinks   []*memorySink
	openErr error
}

func (f *memorySinkFactory) Open(path string) (driven.OutputSink, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	sink := &memorySink{path: path}
	f.sinks = append(f.sinks, sink)
	return sink, nil
}

func (f *memorySinkFactory) last() *memorySink {
	if len(f.sinks) == 0 {
		return nil
	}
	return f.sinks[len(f.sinks)-1]
}

// statusStep is one scripted Status result.
type statusStep struct {
	status domain.JobStatus
	err    error
}

// mockConverter implements driven.Converter with scripted responses.
type mockConverter struct {
	submitID  string
	submitErr error
	submitted []string

	statuses    []statusStep
	statusCalls int

	streams   []driven.PageStream
	streamErr error
	opened    int

	downloadText string
	downloadErr  error
	downloads    int
}

func (m *mockConverter) Submit(_ context.Context, source string, _ domain.Options) (string, error) {
	m.submitted = append(m.submitted, source)
	if m.submitErr != nil {
		return "", m.submitErr
	}
	if m.submitID == "" {
		return "job-1", nil
	}
	return m.submitID, nil
}

// Status consumes the scripted steps one per call; the last step
// repeats once the script runs out.
func (m *mockConverter) Status(_ context.Context, jobID string) (domain.JobStatus, error) {
	m.statusCalls++
	if len(m.statuses) == 0 {
		return domain.JobStatus{Status: domain.StatusCompleted}, nil
	}
	i := m.statusCalls - 1
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	step := m.statuses[i]
	return step.status, step.err
}

// OpenStream hands out the scripted streams one per call; the last
// stream repeats once the script runs out.
func (m *mockConverter) OpenStream(_ context.Context, jobID string) (driven.PageStream, error) {
	m.opened++
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	if len(m.streams) == 0 {
		return &scriptedStream{}, nil
	}
	i := m.opened - 1
	if i >= len(m.streams) {
		i = len(m.streams) - 1
	}
	return m.streams[i], nil
}

func (m *mockConverter) DownloadFinal(_ context.Context, jobID string) (string, error) {
	m.downloads++
	if m.downloadErr != nil {
		return "", m.downloadErr
	}
	return m.downloadText, nil
}

// mockCounter implements driven.PageCounter from a fixed table.
type mockCounter struct {
	counts map[string]int
	err    error
}

func (m *mockCounter) CountPages(path string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n, ok := m.counts[path]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return n, nil
}

// mockHistory implements driven.HistoryStore, recording saves.
type mockHistory struct {
	saved   []*domain.BatchSummary
	saveErr error
}

func (m *mockHistory) SaveRun(_ context.Context, summary *domain.BatchSummary) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	summary.RunID = "run-1"
	m.saved = append(m.saved, summary)
	return nil
}

func (m *mockHistory) ListRuns(_ context.Context, _ int) ([]domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockHistory) GetRun(_ context.Context, _ string) (*domain.BatchSummary, error) {
	return nil, domain.ErrNotFound
}

func (m *mockHistory) Close() error { return nil }

// recordReporter captures lifecycle events for assertions.
type recordReporter struct {
	driven.NopReporter

	batchStarted  bool
	pagesExpected int

	jobsStarted     []string
	submitted       []string
	totalsAnnounced []int
	pagesReceived   []int
	decodeFailures  int
	interruptions   []error
	fallbacks       []string
	polls           []domain.JobStatus
	downloadsBegun  []string
	finished        []domain.JobResult
	batchDone       *domain.BatchSummary
	warnings        []string
}

func (r *recordReporter) BatchStarted(jobs, pagesExpected int) {
	r.batchStarted = true
	r.pagesExpected = pagesExpected
}

func (r *recordReporter) JobStarted(source string, index, total int) {
	r.jobsStarted = append(r.jobsStarted, source)
}

func (r *recordReporter) JobSubmitted(source, remoteID string) {
	r.submitted = append(r.submitted, remoteID)
}

func (r *recordReporter) TotalKnown(remoteID string, total int) {
	r.totalsAnnounced = append(r.totalsAnnounced, total)
}

func (r *recordReporter) PageReceived(remoteID string, index, received, total int) {
	r.pagesReceived = append(r.pagesReceived, index)
}

func (r *recordReporter) DecodeFailure(remoteID string, err error) {
	r.decodeFailures++
}

func (r *recordReporter) StreamInterrupted(remoteID string, err error, received, total int) {
	r.interruptions = append(r.interruptions, err)
}

func (r *recordReporter) FallbackEntered(remoteID string) {
	r.fallbacks = append(r.fallbacks, remoteID)
}

func (r *recordReporter) PollProgress(remoteID string, status domain.JobStatus) {
	r.polls = append(r.polls, status)
}

func (r *recordReporter) DownloadStarted(remoteID string) {
	r.downloadsBegun = append(r.downloadsBegun, remoteID)
}

func (r *recordReporter) JobFinished(result domain.JobResult) {
	r.finished = append(r.finished, result)
}

func (r *recordReporter) BatchFinished(summary domain.BatchSummary) {
	r.batchDone = &summary
}

func (r *recordReporter) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, format)
}
