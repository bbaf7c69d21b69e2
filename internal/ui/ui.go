package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
)

const maxEvents = 8

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

// Runner performs the sync, sending progress on the channel. [tasks.Driver.Run] satisfies it.
type Runner func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.SyncReport, error)

// SyncInfo is shown on the confirm screen.
type SyncInfo struct {
	Source      string
	Destination string
	PlaylistID  string
	Policy      string
	Backend     string
	Cursor      string
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	info         SyncInfo
	run          Runner
	width        int
	height       int
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan syncResult
	progress     tasks.ProgressUpdate
	events       []string
	stopping     bool
	report       *models.SyncReport
	err          error
	results      list.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that calls run once the user confirms.
func NewModel(ctx context.Context, info SyncInfo, run Runner) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		view:    ConfirmView,
		info:    info,
		run:     run,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Report returns the finished run's report, or nil when the sync never ran.
func (m *Model) Report() *models.SyncReport { return m.report }

// Err returns the error the sync ended with.
func (m *Model) Err() error { return m.err }

// Init does nothing until the user confirms.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-8, 10)
		if m.view == ResultView {
			m.results.SetSize(max(msg.Width-4, 40), max(msg.Height-10, 10))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgSyncComplete:
			res := msg.data.(syncResult)
			m.report = res.report
			m.err = res.err
			m.view = ResultView
			m.progressChan = nil
			m.showResults()
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.start):
		m.view = SyncView
		return m, tea.Batch(m.spinner.Tick, m.startSync())
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		m.stopping = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.results.FilterState() != list.Filtering && key.Matches(msg, m.keys.quit) {
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan syncResult, 1)

	go func(progress chan tasks.ProgressUpdate, results chan<- syncResult) {
		report, err := m.run(m.ctx, progress)
		results <- syncResult{report, err}
		close(progress)
	}(m.progressChan, m.resultChan)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, results := m.progressChan, m.resultChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			res := <-results
			return syncCompleteMsg(res.report, res.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	m.progress = update
	if update.Phase != tasks.InsertTrack && update.Phase != tasks.SeekCursor {
		return
	}

	m.events = append(m.events, update.Message)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *Model) showResults() {
	var outcomes []models.TrackOutcome
	if m.report != nil {
		outcomes = m.report.Outcomes
	}
	m.results = list.New(outcomeItems(outcomes), list.NewDefaultDelegate(), max(m.width-4, 40), max(m.height-10, 10))
	m.results.Title = "Processed tracks"
	m.results.SetShowHelp(false)
}

func (m *Model) percent() float64 {
	if m.progress.Total == 0 {
		return 0
	}
	return float64(m.progress.Step) / float64(m.progress.Total)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Sync liked songs?")

	var b strings.Builder
	fmt.Fprintf(&b, "From:     %s liked songs\n", m.info.Source)
	fmt.Fprintf(&b, "To:       %s playlist %s\n", m.info.Destination, m.info.PlaylistID)
	fmt.Fprintf(&b, "Policy:   %s\n", m.info.Policy)
	fmt.Fprintf(&b, "State:    %s\n", m.info.Backend)
	if m.info.Cursor != "" {
		fmt.Fprintf(&b, "Resuming: after %q", m.info.Cursor)
	} else {
		b.WriteString("Resuming: from the start")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.start, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.box.Render(b.String()), helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing liked songs")

	status := m.progress.Message
	if status == "" {
		status = "Starting..."
	}
	if m.stopping {
		status = styles.warn.Render("Stopping after the current track...")
	}

	events := strings.Join(m.events, "\n")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel})

	return fmt.Sprintf("%s\n%s %s\n\n%s\n\n%s\n\n%s", title, m.spinner.View(), status, m.bar.ViewAs(m.percent()), events, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})

	if m.report == nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)) + "\n\n" + helpView
	}

	var title string
	switch {
	case m.report.Interrupted:
		title = styles.warn.Render("Sync interrupted")
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err))
	case !m.report.CursorFound:
		title = styles.warn.Render("Saved cursor not found in liked songs; nothing processed")
	default:
		title = styles.ok.Render("✓ Sync Complete!")
	}

	info := fmt.Sprintf(
		"Inserted: %d  Duplicates: %d  No match: %d  Failed: %d  Already added: %d  Before cursor: %d",
		m.report.Inserted,
		m.report.Duplicates,
		m.report.NoMatch,
		m.report.Failed,
		m.report.AlreadyAdded,
		m.report.BeforeCursor,
	)
	if m.report.CursorEnd != "" {
		info += fmt.Sprintf("\nCursor: %s", m.report.CursorEnd)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, m.results.View(), helpView)
}
