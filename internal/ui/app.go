package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/folderdiff/internal/core"
	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

// scanStartMsg triggers the actual scan start (after UI has rendered)
type scanStartMsg struct{}

// eventMsg carries one controller event and the channel it came from
type eventMsg struct {
	event core.Event
	ch    <-chan core.Event
}

// eventsDoneMsg is sent when a scan or upload has no more events
type eventsDoneMsg struct{}

// spinnerTickMsg triggers spinner animation
type spinnerTickMsg struct{}

// Spinner frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTickInterval = 80 * time.Millisecond

// App is the main application model
type App struct {
	// Components
	header  Header
	results ResultsPanel
	help    HelpOverlay
	keys    KeyMap
	mimes   mimeCache

	ctrl   *core.Controller
	ctx    context.Context
	cancel context.CancelFunc

	// UI state
	busy         bool
	scanned      bool
	confirming   bool
	err          error
	spinnerFrame int

	// Dimensions
	width  int
	height int
}

// NewApp creates the application around a controller
func NewApp(ctx context.Context, ctrl *core.Controller) App {
	ctx, cancel := context.WithCancel(ctx)
	state := ctrl.State()

	return App{
		header:  NewHeader(state.Source, state.Target, state.Direction),
		results: NewResultsPanel(),
		help:    NewHelpOverlay(),
		keys:    DefaultKeyMap(),
		mimes:   make(mimeCache),
		ctrl:    ctrl,
		ctx:     ctx,
		cancel:  cancel,
		busy:    true, // scan starts on init
	}
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("FOLDERDIFF"), func() tea.Msg {
		return scanStartMsg{}
	})
}

// listen waits for the next event on ch
func listen(ch <-chan core.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return eventsDoneMsg{}
		}
		return eventMsg{event: event, ch: ch}
	}
}

func tickSpinner() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// startScan begins a scan and returns the commands that follow it
func (a *App) startScan() tea.Cmd {
	ch, err := a.ctrl.StartScan(a.ctx)
	if err != nil {
		a.err = err
		return nil
	}
	logging.Debug.Debug("[UI] Scan started")

	a.busy = true
	a.err = nil
	a.header.SetStatus(core.PhaseCounting.String())
	return tea.Batch(listen(ch), tickSpinner())
}

// startUpload replicates the listed entries
func (a *App) startUpload() tea.Cmd {
	ch, err := a.ctrl.StartUpload(a.ctx)
	if err != nil {
		a.err = err
		return nil
	}
	logging.Debug.Debug("[UI] Upload started")

	a.busy = true
	a.err = nil
	return tea.Batch(listen(ch), tickSpinner())
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case scanStartMsg:
		return a, a.startScan()

	case eventMsg:
		a.handleEvent(msg.event)
		return a, listen(msg.ch)

	case eventsDoneMsg:
		a.busy = false
		a.header.SetSpinner("")
		return a, nil

	case spinnerTickMsg:
		if !a.busy {
			return a, nil
		}
		a.spinnerFrame = (a.spinnerFrame + 1) % len(spinnerFrames)
		a.header.SetSpinner(spinnerFrames[a.spinnerFrame])
		return a, tickSpinner()
	}

	return a, nil
}

// handleEvent applies a controller event to the view
func (a *App) handleEvent(event core.Event) {
	switch e := event.(type) {
	case core.ScanPhaseChangedEvent:
		if e.Phase == core.PhaseComparing {
			state := a.ctrl.State()
			a.header.SetRoots(state.Source, state.Target)
			a.header.SetProgress(e.Phase.String(), 0)
		}

	case core.ScanProgressEvent:
		a.header.SetProgress(fmt.Sprintf("%d/%d files", e.Progress.Processed, e.Progress.Total), e.Progress.Percent())

	case core.ScanCompletedEvent:
		if e.Err != nil {
			a.header.SetStatus("Scan failed")
			return
		}
		state := a.ctrl.State()
		master := state.Source
		if state.Direction == scanner.MissingInSource {
			master = state.Target
		}
		a.scanned = true
		a.results.SetEntries(master, e.Entries, e.Changes)
		a.header.SetStatus(summary(e.Entries, e.Duration, e.Space))

	case core.UploadStartedEvent:
		a.header.SetProgress(fmt.Sprintf("Uploading 0/%d", e.Total), 0)

	case core.UploadProgressEvent:
		p := e.Progress
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Done) / float64(p.Total)
		}
		a.header.SetProgress(fmt.Sprintf("Uploading %d/%d · %s", p.Done, p.Total, FormatSize(p.Bytes)), pct)

	case core.UploadCompletedEvent:
		if e.Result == nil {
			a.header.SetStatus("Upload failed")
			return
		}
		status := fmt.Sprintf("Uploaded %d files · %s", e.Result.Uploaded, FormatSize(e.Result.Bytes))
		if n := e.Result.Failed(); n > 0 {
			status += fmt.Sprintf(" · %d failed", n)
		}
		a.header.SetStatus(status)

	case core.ErrorEvent:
		a.err = e.Err
	}
}

func summary(entries []model.MissingEntry, took time.Duration, space *model.Volume) string {
	size := model.TotalSize(entries)
	s := fmt.Sprintf("%d missing · %s · %s", len(entries), FormatSize(size), took.Round(time.Millisecond))
	if space == nil {
		return s
	}
	if !space.Fits(size) {
		return s + " · " + WarningStyle.Render("only "+FormatSize(space.FreeBytes)+" free")
	}
	return s + " · " + FormatSize(space.FreeBytes) + " free"
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay takes precedence
	if a.help.IsVisible() {
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Cancel) {
			a.help.SetVisible(false)
		}
		return a, nil
	}

	// Upload confirmation
	if a.confirming {
		switch {
		case key.Matches(msg, a.keys.Confirm):
			a.confirming = false
			return a, a.startUpload()
		case key.Matches(msg, a.keys.Cancel):
			a.confirming = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.cancel()
		a.ctrl.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()

	case key.Matches(msg, a.keys.Up):
		a.results.MoveUp()

	case key.Matches(msg, a.keys.Down):
		a.results.MoveDown()

	case key.Matches(msg, a.keys.PageUp):
		a.results.PageUp()

	case key.Matches(msg, a.keys.PageDown):
		a.results.PageDown()

	case key.Matches(msg, a.keys.Top):
		a.results.GoToTop()

	case key.Matches(msg, a.keys.Bottom):
		a.results.GoToBottom()

	case key.Matches(msg, a.keys.Open):
		if e, ok := a.results.Selected(); ok {
			dir := filepath.Dir(e.SourcePath)
			if err := openInFileManager(dir); err != nil {
				logging.Debug.WithError(err).Debug("openInFileManager failed")
			}
		}

	case key.Matches(msg, a.keys.Upload):
		if a.canUpload() {
			a.confirming = true
		}

	case key.Matches(msg, a.keys.Rescan):
		if !a.busy {
			return a, a.startScan()
		}
	}

	return a, nil
}

func (a App) canUpload() bool {
	return !a.busy && a.ctrl.HasRemote() && a.results.Len() > 0
}

// updateLayout calculates component sizes based on window dimensions
func (a *App) updateLayout() {
	// header, detail line, help bar and the panel border
	panelHeight := max(a.height-5, 1)

	a.header.SetWidth(a.width)
	a.results.SetSize(max(a.width-2, 1), panelHeight)
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Comparing folders..."
	}

	var sections []string
	sections = append(sections, a.header.View())

	if a.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(ColorDanger).
			Padding(0, 1)
		sections = append(sections, errStyle.Render(fmt.Sprintf("Error: %v", a.err)))
	}

	if !a.scanned {
		panelHeight := max(a.height-4, 1)
		text := "Waiting"
		if a.busy {
			text = a.ctrl.State().Scan.Phase.String() + "..."
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(1, 3).
			Render(text)
		sections = append(sections, lipgloss.Place(a.width, panelHeight, lipgloss.Center, lipgloss.Center, box))
	} else {
		sections = append(sections, a.results.View())
		if e, ok := a.results.Selected(); ok {
			sections = append(sections, DetailLine(e, a.mimes.lookup(e.SourcePath), a.width))
		} else {
			sections = append(sections, "")
		}
	}

	sections = append(sections, HelpBar(a.width, a.canUpload()))
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if a.help.IsVisible() {
		return a.overlay(a.help.View())
	}
	if a.confirming {
		return a.overlay(a.confirmView())
	}
	return content
}

func (a App) confirmView() string {
	entries := a.results.entries
	question := fmt.Sprintf("Upload %d differences (%s) to %s?",
		len(entries), FormatSize(model.TotalSize(entries)), a.ctrl.State().Remote)
	answer := HelpKey.Render("y") + HelpStyle.Render("/") + HelpKey.Render("n")
	return PromptStyle.Render(question + "\n\n" + answer)
}

func (a App) overlay(view string) string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		view,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorBackground),
	)
}

var _ tea.Model = App{}
