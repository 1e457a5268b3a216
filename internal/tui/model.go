package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/moderator"
	"github.com/Iron-Ham/podium/internal/transcript"
	"github.com/Iron-Ham/podium/internal/tui/styles"
)

// Options tune the debate screen.
type Options struct {
	// ShowBudgets shows word and time budgets beside speech labels.
	ShowBudgets bool
	// InputHeight is the speech input height in lines.
	InputHeight int
	// Autoplay starts autoplay when the screen opens (both_automated only).
	Autoplay bool
	// ExportDir is where ctrl+e writes the transcript.
	ExportDir string
}

// Model is the bubbletea model for one debate.
//
// Calls into the moderator that can publish events always run inside a
// tea.Cmd: the App forwards events with program.Send, which blocks until
// Update returns.
type Model struct {
	ctx     context.Context
	mod     *moderator.Moderator
	session *debate.Session
	opts    Options

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	width     int
	height    int
	ready     bool
	busy      bool
	autoState autoplay.State
	status    string
	err       error
	quitting  bool
}

// NewModel creates the debate screen for mod.
func NewModel(ctx context.Context, mod *moderator.Moderator, opts Options) Model {
	if opts.InputHeight <= 0 {
		opts.InputHeight = 6
	}

	ta := textarea.New()
	ta.Placeholder = "Write your speech, then press ctrl+s to deliver it..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(opts.InputHeight)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary

	return Model{
		ctx:       ctx,
		mod:       mod,
		session:   mod.Session(),
		opts:      opts,
		keys:      defaultKeyMap(),
		help:      help.New(),
		viewport:  viewport.New(80, 20),
		input:     ta,
		spinner:   sp,
		autoState: mod.Driver().State(),
	}
}

// Init starts the cursor blink and spinner, and kicks off any automated
// speech that is due before the human can act.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	switch m.session.Mode() {
	case debate.ModeBothAutomated:
		if m.opts.Autoplay {
			cmds = append(cmds, m.toggleAutoplay(true))
		}
	case debate.ModeHumanVsAutomated:
		if _, ok := debate.NextAutomatedSide(m.session); ok {
			cmds = append(cmds, m.advance())
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case speechMsg:
		m.layout()
		m.refresh()
		m.status = fmt.Sprintf("Speech %d delivered", msg.index+1)

	case completeMsg:
		m.layout()
		m.refresh()
		m.status = "Debate complete"
		m.input.Blur()

	case autoplayMsg:
		m.autoState = msg.to

	case generationFailedMsg:
		m.err = msg.err

	case submitResultMsg:
		m.busy = false
		m.err = msg.err
		if msg.accepted {
			m.input.Reset()
		}

	case generateResultMsg:
		m.busy = false
		m.err = msg.err

	case autoplayToggledMsg:
		m.err = msg.err
		m.autoState = m.mod.Driver().State()

	case exportResultMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "Transcript written to " + msg.path
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.inputActive() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.ToggleBudget):
		m.opts.ShowBudgets = !m.opts.ShowBudgets
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NextSpeech):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, m.requestNext()

	case key.Matches(msg, m.keys.ToggleAuto):
		if m.session.Mode() != debate.ModeBothAutomated {
			m.status = "Autoplay is only available when both sides are automated"
			return m, nil
		}
		running := m.autoState == autoplay.StateArmed || m.autoState == autoplay.StateAwaitingResult
		return m, m.toggleAutoplay(!running)

	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	}

	if m.inputActive() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if !debate.CanHumanActNow(m.session) {
		m.status = "It is not a human participant's turn"
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.status = "Type a speech before delivering it"
		return m, nil
	}
	side := m.humanSide()
	m.busy = true
	m.err = nil
	mod, ctx := m.mod, m.ctx
	return m, func() tea.Msg {
		sp, err := mod.SubmitHuman(ctx, side, text)
		accepted := err == nil || errors.Is(err, errors.ErrGenerationFailed)
		return submitResultMsg{speech: sp, accepted: accepted, err: err}
	}
}

// humanSide is the side a human at this terminal speaks for right now.
func (m Model) humanSide() debate.Side {
	if m.session.Mode() == debate.ModeHumanVsAutomated {
		return m.session.HumanSide()
	}
	side, _ := debate.ExpectedSide(m.session)
	return side
}

func (m Model) inputActive() bool {
	return !m.busy && debate.CanHumanActNow(m.session)
}

func (m Model) advance() tea.Cmd {
	mod, ctx := m.mod, m.ctx
	return func() tea.Msg {
		out, err := mod.Advance(ctx)
		return generateResultMsg{count: len(out), err: err}
	}
}

func (m Model) requestNext() tea.Cmd {
	mod, ctx := m.mod, m.ctx
	return func() tea.Msg {
		_, err := mod.RequestAutomated(ctx)
		if err != nil {
			return generateResultMsg{err: err}
		}
		return generateResultMsg{count: 1}
	}
}

func (m Model) toggleAutoplay(start bool) tea.Cmd {
	mod, ctx := m.mod, m.ctx
	return func() tea.Msg {
		if !start {
			mod.StopAutoplay()
			return autoplayToggledMsg{}
		}
		return autoplayToggledMsg{err: mod.StartAutoplay(ctx)}
	}
}

func (m Model) export() tea.Cmd {
	snap := m.mod.Snapshot()
	dir := m.opts.ExportDir
	return func() tea.Msg {
		name := fmt.Sprintf("debate-%s-%s.md", time.Now().Format("20060102-150405"), shortID(snap.ID))
		path := filepath.Join(dir, name)
		return exportResultMsg{path: path, err: transcript.Save(path, snap)}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// layout sizes the viewport and input to the terminal.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	inner := max(m.width-4, 20)
	m.input.SetWidth(inner)
	m.help.Width = m.width

	reserved := headerHeight + statusHeight + lineCount(m.help.View(m.keys)) + 2
	if debate.CanHumanActNow(m.session) {
		reserved += m.opts.InputHeight + 2
	}
	m.viewport.Width = inner
	m.viewport.Height = max(m.height-reserved, 3)
}

// refresh re-renders the transcript into the viewport and follows the tail.
func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.session, m.viewport.Width, m.opts.ShowBudgets))
	m.viewport.GotoBottom()
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Opening the floor..."
	}

	parts := []string{
		renderHeader(m.session, m.width),
		styles.Transcript.Width(m.width - 2).Render(m.viewport.View()),
		m.renderStatus(),
	}
	if debate.CanHumanActNow(m.session) {
		box := styles.InputBoxIdle
		if m.inputActive() {
			box = styles.InputBox
		}
		parts = append(parts, box.Width(m.width-2).Render(m.input.View()))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}
