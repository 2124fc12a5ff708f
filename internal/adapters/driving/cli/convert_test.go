package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
)

// mockBatchRunner implements driving.BatchRunner for testing.
type mockBatchRunner struct {
	summary *domain.BatchSummary
	err     error

	gotSources []string
	gotOpts    driving.RunOptions
}

func (m *mockBatchRunner) Run(_ context.Context, sources []string, opts driving.RunOptions) (*domain.BatchSummary, error) {
	m.gotSources = sources
	m.gotOpts = opts
	if m.summary == nil {
		m.summary = &domain.BatchSummary{}
	}
	return m.summary, m.err
}

// setupConvertTest installs a mock runner and isolates flags and
// configuration for one test.
func setupConvertTest(t *testing.T) *mockBatchRunner {
	t.Helper()
	mock := &mockBatchRunner{}

	oldRunner, oldSettings := batchRunner, settings
	batchRunner = mock
	settings = nil
	flagConfigDir = t.TempDir()

	t.Cleanup(func() {
		batchRunner, settings = oldRunner, oldSettings
		flagConfigDir = ""
		flagSilent = false
		flagVerbose = false
		convertOutDir = ""
		convertSkipStatusCheck = false
		convertNoProbe = false
		rootCmd.SetArgs(nil)
	})
	return mock
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestConvertCmd_Use(t *testing.T) {
	assert.Equal(t, "convert [paths...]", convertCmd.Use)
}

func TestConvertCmd_Short(t *testing.T) {
	assert.Equal(t, "Convert PDF documents to Markdown", convertCmd.Short)
}

func TestConvertCmd_ConvertsDirectory(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	b := writePDF(t, dir, "b.pdf")
	a := writePDF(t, dir, "a.pdf")
	mock.summary = &domain.BatchSummary{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Results: []domain.JobResult{
			{Source: a, OutputPath: filepath.Join(dir, "a.mmd"), Success: true, Via: domain.ViaStream, PagesReceived: 3, PagesTotal: 3},
			{Source: b, OutputPath: filepath.Join(dir, "b.mmd"), Success: true, Via: domain.ViaDownload, PagesReceived: 2, PagesTotal: 2},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", dir})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, mock.gotSources)
	assert.True(t, mock.gotOpts.ProbePages)
	assert.Contains(t, buf.String(), "Conversion complete: 2/2 documents converted")
	assert.Contains(t, buf.String(), "Conversion Summary:")
	assert.Contains(t, buf.String(), "✅ a.pdf → "+filepath.Join(dir, "a.mmd"))
	assert.Contains(t, buf.String(), "(fallback method)")
}

func TestConvertCmd_SingleFileSkipsSummaryBlock(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf")
	mock.summary = &domain.BatchSummary{
		Results: []domain.JobResult{{Source: src, Success: true, Via: domain.ViaStream}},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", src})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{src}, mock.gotSources)
	assert.NotContains(t, buf.String(), "Conversion complete")
}

func TestConvertCmd_FailuresExitNonZero(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	good := writePDF(t, dir, "good.pdf")
	bad := writePDF(t, dir, "bad.pdf")
	mock.summary = &domain.BatchSummary{
		Results: []domain.JobResult{
			{Source: good, OutputPath: filepath.Join(dir, "good.mmd"), Success: true, Via: domain.ViaStream},
			{Source: bad, Via: domain.ViaNone, Error: "submit rejected: status 401"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", dir})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 conversions failed")
	assert.Contains(t, buf.String(), "❌ bad.pdf: submit rejected: status 401")
}

func TestConvertCmd_Flags(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf")
	mock.summary = &domain.BatchSummary{
		Results: []domain.JobResult{{Source: src, Success: true, Via: domain.ViaStream}},
	}

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", src, "--out-dir", "/tmp/out", "--skip-status-check", "--no-probe"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", mock.gotOpts.OutDir)
	assert.True(t, mock.gotOpts.SkipStatusCheck)
	assert.False(t, mock.gotOpts.ProbePages)
}

func TestConvertCmd_SilentSuppressesSummary(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf")
	b := writePDF(t, dir, "b.pdf")
	mock.summary = &domain.BatchSummary{
		Results: []domain.JobResult{
			{Source: a, Success: true, Via: domain.ViaStream},
			{Source: b, Success: true, Via: domain.ViaStream},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", dir, "--silent"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestConvertCmd_EmptyDirectory(t *testing.T) {
	setupConvertTest(t)
	dir := t.TempDir()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", dir})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files in")
}

func TestConvertCmd_MissingPath(t *testing.T) {
	setupConvertTest(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", filepath.Join(t.TempDir(), "absent.pdf")})

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestConvertCmd_Interrupted(t *testing.T) {
	mock := setupConvertTest(t)
	dir := t.TempDir()
	src := writePDF(t, dir, "doc.pdf")
	mock.summary = &domain.BatchSummary{}
	mock.err = context.Canceled

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"convert", src})

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInterrupted)
}

func TestCollectSources_MixedArgs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "batch")
	require.NoError(t, os.Mkdir(sub, 0o755))
	single := writePDF(t, dir, "single.pdf")
	one := writePDF(t, sub, "one.pdf")
	two := writePDF(t, sub, "two.pdf")
	writeOther := filepath.Join(sub, "notes.txt")
	require.NoError(t, os.WriteFile(writeOther, []byte("x"), 0o644))

	sources, err := collectSources([]string{single, sub})

	require.NoError(t, err)
	assert.Equal(t, []string{single, one, two}, sources)
}

func TestResultLine(t *testing.T) {
	assert.Equal(t, "✅ a.pdf → /out/a.mmd",
		resultLine(domain.JobResult{Source: "/in/a.pdf", OutputPath: "/out/a.mmd", Success: true, Via: domain.ViaStream}))
	assert.Equal(t, "✅ b.pdf → /out/b.mmd (fallback method)",
		resultLine(domain.JobResult{Source: "/in/b.pdf", OutputPath: "/out/b.mmd", Success: true, Via: domain.ViaDownload}))
	assert.Equal(t, "❌ c.pdf: stream dead",
		resultLine(domain.JobResult{Source: "/in/c.pdf", Error: "stream dead"}))
}
