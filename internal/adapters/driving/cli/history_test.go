package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// mockHistoryStore implements driving.RunHistory for testing.
type mockHistoryStore struct {
	runs []domain.BatchSummary
	err  error
}

func (m *mockHistoryStore) ListRuns(_ context.Context, _ int) ([]domain.BatchSummary, error) {
	return m.runs, m.err
}

func (m *mockHistoryStore) GetRun(_ context.Context, runID string) (*domain.BatchSummary, error) {
	for i := range m.runs {
		if m.runs[i].RunID == runID {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func setupHistoryTest(t *testing.T) *mockHistoryStore {
	t.Helper()
	mock := &mockHistoryStore{}
	old := runHistory
	runHistory = mock
	t.Cleanup(func() {
		runHistory = old
		historyLimit = 20
		rootCmd.SetArgs(nil)
	})
	return mock
}

func sampleRun(id string) domain.BatchSummary {
	started := time.Date(2024, 5, 27, 10, 0, 0, 0, time.UTC)
	return domain.BatchSummary{
		RunID:      id,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Results: []domain.JobResult{
			{Source: "/in/paper.pdf", RemoteID: "job-1", OutputPath: "/out/paper.mmd",
				PagesReceived: 8, PagesTotal: 8, Success: true, Via: domain.ViaStream},
			{Source: "/in/slides.pdf", Via: domain.ViaNone, Error: "submit rejected: status 500"},
		},
	}
}

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history", historyCmd.Use)
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupHistoryTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No conversion runs recorded yet.")
}

func TestHistoryCmd_ListsRuns(t *testing.T) {
	mock := setupHistoryTest(t)
	mock.runs = []domain.BatchSummary{sampleRun("run-1"), sampleRun("run-2")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "1m30s")
}

func TestHistoryShowCmd_Detail(t *testing.T) {
	mock := setupHistoryTest(t)
	mock.runs = []domain.BatchSummary{sampleRun("run-1")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", "run-1"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "Documents: 1/2 converted, 8 pages")
	assert.Contains(t, out, "✅ paper.pdf → /out/paper.mmd")
	assert.Contains(t, out, "job job-1, 8/8 pages via stream")
	assert.Contains(t, out, "❌ slides.pdf: submit rejected: status 500")
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	setupHistoryTest(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"history", "show", "no-such-run"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run with ID no-such-run")
}
