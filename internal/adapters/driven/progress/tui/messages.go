package tui

import "github.com/pagestream/pagestream-cli/internal/core/domain"

// Bubbletea messages mirroring the progress reporter events. One event
// type per reporter method keeps the model's Update a plain switch.

type batchStartedMsg struct {
	jobs          int
	pagesExpected int
}

type jobStartedMsg struct {
	source string
	index  int
	total  int
}

type jobSubmittedMsg struct {
	source   string
	remoteID string
}

type totalKnownMsg struct {
	remoteID string
	total    int
}

type pageReceivedMsg struct {
	remoteID string
	index    int
	received int
	total    int
}

type streamInterruptedMsg struct {
	remoteID string
	err      error
	received int
	total    int
}

type fallbackEnteredMsg struct {
	remoteID string
}

type pollProgressMsg struct {
	remoteID string
	status   domain.JobStatus
}

type downloadStartedMsg struct {
	remoteID string
}

type jobFinishedMsg struct {
	result domain.JobResult
}

type batchFinishedMsg struct {
	summary domain.BatchSummary
}

// noteMsg carries a free-form warning or error line.
type noteMsg struct {
	text  string
	isErr bool
}

// finishMsg asks the program to quit once the batch goroutine is done.
type finishMsg struct{}
