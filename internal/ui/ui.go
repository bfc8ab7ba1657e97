// package ui implements the interactive submission progress display.
//
// The model consumes importer.ProgressUpdate events from a channel driven by
// the submission engine running in its own goroutine; closing the channel
// ends the program. Quitting the display cancels the engine's context.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lbx/internal/importer"
)

// maxRecent bounds the scrollback of batch messages kept on screen.
const maxRecent = 8

// progressMsg delivers one engine update to the model.
type progressMsg importer.ProgressUpdate

// finishedMsg signals that the update channel closed (engine returned).
type finishedMsg struct{}

// SubmitModel is the bubbletea model for a live submit run.
type SubmitModel struct {
	updates <-chan importer.ProgressUpdate
	cancel  context.CancelFunc

	spinner  spinner.Model
	bar      progress.Model
	phase    importer.Phase
	step     int
	total    int
	recent   []string
	finished bool
	aborted  bool
	done     bool // an ImportDone update arrived before the channel closed
}

// NewSubmitModel creates the model for one submit run. cancel is invoked when
// the user quits mid-run so the engine stops between batches.
func NewSubmitModel(updates <-chan importer.ProgressUpdate, cancel context.CancelFunc) SubmitModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return SubmitModel{
		updates: updates,
		cancel:  cancel,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

// waitForUpdate reads the next engine update; a closed channel finishes the program.
func (m SubmitModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return finishedMsg{}
		}
		return progressMsg(update)
	}
}

func (m SubmitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

func (m SubmitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			// Keep draining updates so the engine can wind down.
			return m, nil
		}
		return m, nil

	case progressMsg:
		update := importer.ProgressUpdate(msg)
		m.phase = update.Phase
		if update.Phase == importer.SubmitBatch || update.Phase == importer.SaveProgress {
			m.step = update.Step
			m.total = update.Total
		}
		if update.Phase == importer.ImportDone {
			m.done = true
		}
		m.recent = append(m.recent, update.Message)
		if len(m.recent) > maxRecent {
			m.recent = m.recent[len(m.recent)-maxRecent:]
		}
		return m, m.waitForUpdate()

	case finishedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m SubmitModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Submitting listens to ListenBrainz"))
	b.WriteString("\n")

	if m.total > 0 {
		b.WriteString(m.bar.ViewAs(float64(m.step) / float64(m.total)))
		b.WriteString(fmt.Sprintf("  batch %d/%d\n\n", m.step, m.total))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" preparing...\n\n")
	}

	for _, line := range m.recent {
		b.WriteString("  " + line + "\n")
	}

	switch {
	case m.aborted:
		b.WriteString("\n" + styles.warn.Render("Stopping after the current batch...") + "\n")
	case m.finished && !m.done:
		b.WriteString("\n" + styles.err.Render("Import stopped before completion. Progress is saved; rerun to resume.") + "\n")
	case m.finished:
		b.WriteString("\n" + styles.ok.Render("Done.") + "\n")
	default:
		b.WriteString("\n" + styles.help.Render("q to stop (progress is saved after every batch)") + "\n")
	}

	return b.String()
}
