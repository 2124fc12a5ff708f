package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// phase is where the current document sits in the conversion pipeline.
type phase int

const (
	phaseSubmitting phase = iota
	phaseStreaming
	phasePolling
	phaseDownloading
)

func (p phase) String() string {
	switch p {
	case phaseSubmitting:
		return "submitting"
	case phaseStreaming:
		return "streaming"
	case phasePolling:
		return "waiting for remote conversion"
	case phaseDownloading:
		return "downloading"
	default:
		return "working"
	}
}

// styleSet holds the lipgloss styles used by the progress view.
type styleSet struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

func defaultStyleSet() styleSet {
	return styleSet{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// model is the Bubbletea model for a running batch.
type model struct {
	styles  styleSet
	spin    spinner.Model
	bar     progress.Model
	width   int
	started bool

	jobs          int
	pagesExpected int
	jobIndex      int
	source        string
	phase         phase
	received      int
	total         int
	pollStatus    string

	finished []domain.JobResult
	note     string
	noteErr  bool
	done     bool
}

func newModel() model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	return model{
		styles: defaultStyleSet(),
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient()),
		width:  80,
	}
}

// Init starts the spinner.
func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles progress events and terminal messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		// Quitting the view interrupts the batch; the command layer
		// cancels the run context when the program exits early.
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case batchStartedMsg:
		m.started = true
		m.jobs = msg.jobs
		m.pagesExpected = msg.pagesExpected
		return m, nil

	case jobStartedMsg:
		m.jobIndex = msg.index
		m.source = msg.source
		m.phase = phaseSubmitting
		m.received = 0
		m.total = 0
		m.pollStatus = ""
		return m, nil

	case jobSubmittedMsg:
		m.phase = phaseStreaming
		return m, nil

	case totalKnownMsg:
		m.total = msg.total
		return m, nil

	case pageReceivedMsg:
		m.phase = phaseStreaming
		m.received = msg.received
		if msg.total > m.total {
			m.total = msg.total
		}
		return m, nil

	case streamInterruptedMsg:
		m.received = msg.received
		return m, nil

	case fallbackEnteredMsg:
		m.phase = phasePolling
		return m, nil

	case pollProgressMsg:
		m.pollStatus = msg.status.Status
		if msg.status.PagesTotal > m.total {
			m.total = msg.status.PagesTotal
		}
		return m, nil

	case downloadStartedMsg:
		m.phase = phaseDownloading
		return m, nil

	case jobFinishedMsg:
		m.finished = append(m.finished, msg.result)
		return m, nil

	case batchFinishedMsg:
		m.done = true
		return m, tea.Quit

	case noteMsg:
		m.note = msg.text
		m.noteErr = msg.isErr
		return m, nil

	case finishMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the batch progress.
func (m model) View() string {
	if m.done || !m.started {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("Converting %d document", m.jobs)
	if m.jobs != 1 {
		title += "s"
	}
	if m.pagesExpected > 0 {
		title += fmt.Sprintf(" (%d pages expected)", m.pagesExpected)
	}
	b.WriteString(m.spin.View() + m.styles.Title.Render(title))
	b.WriteString("\n\n")

	for _, r := range m.finished {
		b.WriteString("  " + m.resultLine(r) + "\n")
	}

	if m.source != "" {
		b.WriteString(fmt.Sprintf("  [%d/%d] %s - %s", m.jobIndex, m.jobs, filepath.Base(m.source), m.currentDetail()))
		b.WriteString("\n")
		if m.total > 0 {
			b.WriteString("  " + m.bar.ViewAs(float64(m.received)/float64(m.total)))
			b.WriteString("\n")
		}
	}

	if m.note != "" {
		style := m.styles.Warning
		if m.noteErr {
			style = m.styles.Error
		}
		b.WriteString("\n  " + style.Render(m.note) + "\n")
	}

	b.WriteString("\n" + m.styles.Muted.Render("[q] abort"))
	return b.String()
}

// resultLine renders one finished document.
func (m model) resultLine(r domain.JobResult) string {
	base := filepath.Base(r.Source)
	if r.Success {
		return m.styles.Success.Render(fmt.Sprintf("✅ %s (%d/%d pages)", base, r.PagesReceived, r.PagesTotal))
	}
	return m.styles.Error.Render(fmt.Sprintf("❌ %s: %s", base, r.Error))
}

// currentDetail renders the phase of the document in flight.
func (m model) currentDetail() string {
	switch m.phase {
	case phaseStreaming:
		if m.total > 0 {
			return fmt.Sprintf("streaming %d/%d pages", m.received, m.total)
		}
		return fmt.Sprintf("streaming %d pages", m.received)
	case phasePolling:
		if m.pollStatus != "" {
			return fmt.Sprintf("%s (%s)", m.phase, m.pollStatus)
		}
	}
	return m.phase.String()
}
