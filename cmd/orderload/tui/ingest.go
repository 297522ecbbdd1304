package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/pebble-orders/pkg/etl"
)

// IngestMode represents the current mode of the ingest UI
type IngestMode int

const (
	ModeRunning IngestMode = iota
	ModeCancelling
	ModeComplete
	ModeError
)

// RunFunc runs an ingest, reporting per-file progress.
type RunFunc func(ctx context.Context, progress func(etl.Progress)) (*etl.Report, error)

// IngestModel is the Bubbletea model for an interactive ingest
type IngestModel struct {
	mode     IngestMode
	root     string
	spinner  spinner.Model
	progress ProgressView
	logs     LogView
	report   *etl.Report
	err      error
	cancel   context.CancelFunc
	width    int
	height   int
}

// Messages
type progressMsg etl.Progress

type ingestDoneMsg struct {
	report *etl.Report
	err    error
}

// NewIngestModel creates the model. cancel stops the running ingest.
func NewIngestModel(root string, cancel context.CancelFunc) IngestModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return IngestModel{
		mode:     ModeRunning,
		root:     root,
		spinner:  s,
		progress: ProgressView{Message: "Discovering files in " + root},
		logs:     NewLogView(10),
		cancel:   cancel,
	}
}

// Init initializes the model
func (m IngestModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles messages
func (m IngestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		m.progress.Total = msg.Total
		m.progress.Current = msg.Done
		if msg.Result != nil {
			m.logs.AddLog(FileLine(*msg.Result))
		} else if m.mode == ModeRunning {
			m.progress.Message = "Loading " + filepath.Base(msg.Current)
		}
		return m, nil

	case ingestDoneMsg:
		m.report = msg.report
		m.err = msg.err
		m.mode = ModeComplete
		if msg.err != nil {
			m.mode = ModeError
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode != ModeRunning && m.mode != ModeCancelling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case ModeRunning:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				m.mode = ModeCancelling
				m.progress.Message = "Cancelling after the current file rolls back"
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, nil

		case ModeComplete, ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

// View renders the UI
func (m IngestModel) View() string {
	switch m.mode {
	case ModeRunning, ModeCancelling:
		help := helpStyle.Render(FormatKey("q", "cancel"))
		if m.mode == ModeCancelling {
			help = helpStyle.Render(warningStyle.Render("cancelling..."))
		}
		return m.place(lipgloss.JoinVertical(lipgloss.Left,
			m.progress.View(m.spinner.View()),
			m.logs.View(),
			help,
		))

	case ModeComplete:
		summary := titleStyle.Render("Ingest Complete!") + "\n\n" +
			successStyle.Render(m.summary()) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))
		return m.place(lipgloss.JoinVertical(lipgloss.Left, boxStyle.Render(summary), m.logs.View()))

	case ModeError:
		summary := titleStyle.Render("Ingest Failed") + "\n\n" +
			m.summary() + "\n" +
			errorStyle.Render(m.err.Error()) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))
		return m.place(lipgloss.JoinVertical(lipgloss.Left, boxStyle.Render(summary), m.logs.View()))
	}

	return "Unknown mode"
}

func (m IngestModel) summary() string {
	if m.report == nil {
		return ""
	}
	return fmt.Sprintf("%d file(s) loaded, %d failed: %d records, %d order items",
		m.report.Loaded, m.report.Failed, m.report.Records, m.report.Items)
}

func (m IngestModel) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// RunIngestUI runs the ingest under an interactive progress display and returns its
// report once the user closes the UI.
func RunIngestUI(ctx context.Context, root string, run RunFunc) (*etl.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewIngestModel(root, cancel))

	done := make(chan ingestDoneMsg, 1)
	go func() {
		report, err := run(ctx, func(pr etl.Progress) { p.Send(progressMsg(pr)) })
		result := ingestDoneMsg{report: report, err: err}
		done <- result
		p.Send(result)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("failed to run interactive ui: %w", err)
	}

	result := <-done
	return result.report, result.err
}
