package term

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/logger"
)

func quietLogger(t *testing.T) {
	t.Helper()
	logger.SetVerbose(false)
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})
}

// TestReporter_JobFinished tests the per-document outcome lines
func TestReporter_JobFinished(t *testing.T) {
	quietLogger(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.JobFinished(domain.JobResult{
		Source:     "/in/paper.pdf",
		OutputPath: "/out/paper.mmd",
		Success:    true,
		Via:        domain.ViaStream,
	})
	assert.Contains(t, buf.String(), "✅ paper.pdf → /out/paper.mmd")
	assert.NotContains(t, buf.String(), "fallback")

	buf.Reset()
	r.JobFinished(domain.JobResult{
		Source:     "/in/scan.pdf",
		OutputPath: "/out/scan.mmd",
		Success:    true,
		Via:        domain.ViaDownload,
	})
	assert.Contains(t, buf.String(), "✅ scan.pdf → /out/scan.mmd (fallback method)")

	buf.Reset()
	r.JobFinished(domain.JobResult{
		Source:  "/in/bad.pdf",
		Success: false,
		Error:   "conversion failed remotely: bad scan",
	})
	assert.Contains(t, buf.String(), "❌ bad.pdf: conversion failed remotely: bad scan")
}

// TestReporter_PageReceived tests the in-place progress line
func TestReporter_PageReceived(t *testing.T) {
	quietLogger(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.JobStarted("/in/paper.pdf", 1, 1)
	r.PageReceived("job-1", 1, 1, 0)
	r.PageReceived("job-1", 2, 2, 4)

	out := buf.String()
	assert.Contains(t, out, "\rpaper.pdf: 1/? pages")
	assert.Contains(t, out, "\rpaper.pdf: 2/4 pages")
}

// TestReporter_JobStarted tests batch position lines for multi-document runs
func TestReporter_JobStarted(t *testing.T) {
	quietLogger(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.JobStarted("/in/a.pdf", 1, 3)
	assert.Contains(t, buf.String(), "Processing 1/3: a.pdf")

	// Single-document runs stay quiet.
	buf.Reset()
	r.JobStarted("/in/solo.pdf", 1, 1)
	assert.Empty(t, buf.String())
}

// TestReporter_StreamInterrupted tests that an open progress line is
// terminated before the warning
func TestReporter_StreamInterrupted(t *testing.T) {
	quietLogger(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.JobStarted("/in/paper.pdf", 1, 1)
	r.PageReceived("job-1", 1, 1, 3)
	r.StreamInterrupted("job-1", errors.New("read timeout"), 1, 3)

	assert.Contains(t, buf.String(), "\rpaper.pdf: 1/3 pages\n")
}

// TestReporter_VerboseModeDelegatesToLogger tests that verbose runs log
// instead of printing progress lines
func TestReporter_VerboseModeDelegatesToLogger(t *testing.T) {
	var logBuf bytes.Buffer
	logger.SetVerbose(true)
	logger.SetOutput(&logBuf)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.JobStarted("/in/paper.pdf", 1, 2)
	r.JobSubmitted("/in/paper.pdf", "job-9")
	r.PageReceived("job-9", 1, 1, 2)
	r.JobFinished(domain.JobResult{Source: "/in/paper.pdf", OutputPath: "/out/paper.mmd", Success: true})

	assert.Empty(t, buf.String())
	assert.Contains(t, logBuf.String(), "[INFO] [paper.pdf] submitted as job-9")
	assert.Contains(t, logBuf.String(), "[INFO] [paper.pdf] received page 1 (1/2)")
	assert.Contains(t, logBuf.String(), "completed and saved")
}
