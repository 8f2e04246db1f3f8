package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/gitsim/internal/replay"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
)

// maxScrollback bounds the rendered lines kept in the viewport.
const maxScrollback = 5000

// Options configure the practice shell.
type Options struct {
	Title string
	// Replay, when non-empty, is played back as soon as the shell opens.
	Replay       []string
	Speed        float64
	CharDelay    time.Duration
	CommandDelay time.Duration
	// OnCommand sees the state after every command, typed or replayed.
	OnCommand func(st *session.State)
}

type replayTickMsg struct{ gen int }

// outbox collects results produced by the player's Exec callback, which
// runs during Update.
type outbox struct {
	results []executed
}

type executed struct {
	prompt string
	line   string
	res    shell.Result
}

// ShellModel is the Bubble Tea model of the interactive shell.
type ShellModel struct {
	loop    *shell.Loop
	opts    Options
	input   textinput.Model
	vp      viewport.Model
	lines   []string
	tooltip string
	notice  string

	history []string
	histPos int

	player *replay.Player
	out    *outbox
	gen    int

	width, height int
	ready         bool
	quitting      bool
}

// NewShell returns a shell model driving loop.
func NewShell(loop *shell.Loop, opts Options) ShellModel {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "type a command, or help"
	in.Focus()
	m := ShellModel{loop: loop, opts: opts, input: in, out: &outbox{}}
	for _, h := range loop.State().History {
		m.history = append(m.history, h.Raw)
	}
	m.histPos = len(m.history)
	return m
}

func (m ShellModel) Init() tea.Cmd {
	if len(m.opts.Replay) > 0 {
		return func() tea.Msg { return startReplayMsg{} }
	}
	return textinput.Blink
}

type startReplayMsg struct{}

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := max(m.height-3, 1) // title + input + status bar
		if !m.ready {
			m.vp = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.vp.Width, m.vp.Height = m.width, vpHeight
		}
		m.input.Width = max(m.width-lipgloss.Width(m.prompt())-1, 10)
		m.refresh()
		return m, nil

	case startReplayMsg:
		return m.startReplay(m.opts.Replay)

	case replayTickMsg:
		if m.player == nil || msg.gen != m.gen {
			return m, nil
		}
		return m.replayTick()

	case tea.KeyMsg:
		if m.player != nil {
			return m.replayKey(msg)
		}
		return m.shellKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ShellModel) shellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		line := m.input.Value()
		m.input.SetValue("")
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			m.quitting = true
			return m, tea.Quit
		}
		m.submit(line)
		return m, nil
	case "ctrl+z":
		if err := m.loop.Undo(); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = "undid the last command"
			m.notify()
		}
		return m, nil
	case "ctrl+l":
		m.lines = nil
		m.refresh()
		return m, nil
	case "up":
		if m.histPos > 0 {
			m.histPos--
			m.input.SetValue(m.history[m.histPos])
			m.input.CursorEnd()
		}
		return m, nil
	case "down":
		if m.histPos < len(m.history) {
			m.histPos++
			if m.histPos == len(m.history) {
				m.input.SetValue("")
			} else {
				m.input.SetValue(m.history[m.histPos])
			}
			m.input.CursorEnd()
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ShellModel) submit(line string) {
	prompt := m.prompt()
	res, err := m.loop.Submit(line)
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	if strings.TrimSpace(line) != "" {
		m.history = append(m.history, line)
	}
	m.histPos = len(m.history)
	m.show(executed{prompt: prompt, line: line, res: res})
	m.notify()
}

func (m *ShellModel) notify() {
	if m.opts.OnCommand != nil {
		m.opts.OnCommand(m.loop.State())
	}
}

// show appends a command and its output to the scrollback.
func (m *ShellModel) show(e executed) {
	if e.res.Clear {
		m.lines = nil
		m.tooltip = ""
		m.refresh()
		return
	}
	m.lines = append(m.lines, promptStyle.Render(e.prompt)+e.line)
	m.tooltip = ""
	for _, l := range e.res.Lines {
		m.lines = append(m.lines, styleLine(l, e.res.Class))
		if l.Tooltip != "" {
			m.tooltip = l.Tooltip
		}
	}
	if n := len(m.lines); n > maxScrollback {
		m.lines = m.lines[n-maxScrollback:]
	}
	m.refresh()
}

func (m *ShellModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m ShellModel) prompt() string {
	return m.loop.Shell().Prompt(m.loop.State())
}

// ── Replay ──────────────────────────────────────────────────────────────────

func (m ShellModel) startReplay(lines []string) (tea.Model, tea.Cmd) {
	out := m.out
	loop := m.loop
	p := replay.New(lines, func(line string) error {
		prompt := loop.Shell().Prompt(loop.State())
		res := loop.Replay(line)
		out.results = append(out.results, executed{prompt: prompt, line: line, res: res})
		return nil
	})
	if m.opts.CharDelay > 0 {
		p.CharDelay = m.opts.CharDelay
	}
	if m.opts.CommandDelay > 0 {
		p.CommandDelay = m.opts.CommandDelay
	}
	if m.opts.Speed > 0 {
		p.SetSpeed(m.opts.Speed)
	}
	if err := p.Start(); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.loop.SetReplaying(true)
	m.player = p
	m.gen++
	m.notice = ""
	return m, m.scheduleTick()
}

func (m ShellModel) scheduleTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.player.Delay(), func(time.Time) tea.Msg { return replayTickMsg{gen: gen} })
}

func (m ShellModel) replayTick() (tea.Model, tea.Cmd) {
	ev := m.player.Tick()
	m.applyEvent(ev)
	if m.player == nil {
		return m, nil
	}
	return m, m.scheduleTick()
}

// applyEvent reflects a replay step in the view and ends the replay when
// the player is done.
func (m *ShellModel) applyEvent(ev replay.Event) {
	switch ev.Kind {
	case replay.EventTyped:
		m.input.SetValue(ev.Text)
		m.input.CursorEnd()
	case replay.EventExecuted:
		m.input.SetValue("")
		for _, e := range m.out.results {
			m.show(e)
			m.history = append(m.history, e.line)
		}
		m.out.results = nil
		m.histPos = len(m.history)
		m.notify()
	}
	if m.player.State() == replay.Done {
		m.finishReplay()
	}
}

func (m *ShellModel) finishReplay() {
	if err := m.player.Err(); err != nil {
		m.notice = "replay stopped: " + err.Error()
	} else {
		m.notice = "replay finished"
	}
	m.player = nil
	m.gen++
	m.loop.SetReplaying(false)
	m.input.SetValue("")
}

func (m ShellModel) replayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.player.Stop()
		m.loop.SetReplaying(false)
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.player.Stop()
		m.finishReplay()
		m.notice = "replay stopped"
	case " ":
		m.player.Toggle()
	case "n":
		m.applyEvent(m.player.Skip())
	case "+", "=":
		m.player.SetSpeed(m.player.Speed() * 2)
	case "-":
		m.player.SetSpeed(m.player.Speed() / 2)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ── View ────────────────────────────────────────────────────────────────────

func (m ShellModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading…"
	}

	title := "  gitsim"
	if m.opts.Title != "" {
		title += "  " + m.opts.Title
	}
	if m.player != nil {
		title += "  " + replayStyle.Render(fmt.Sprintf("▶ replay %s x%.2g", m.player.State(), m.player.Speed()))
	}
	top := titleStyle.Width(m.width).Render(title)

	inputRow := promptStyle.Render(m.prompt()) + m.input.View()

	return lipgloss.JoinVertical(lipgloss.Left, top, m.vp.View(), inputRow, m.statusBar())
}

func (m ShellModel) statusBar() string {
	st := m.loop.State()
	left := "no repository"
	if st.Repo.Initialized {
		head := st.Repo.CurrentBranch()
		if head == "" {
			head = "detached"
		}
		left = fmt.Sprintf("%s  %d commits  %d staged", head, st.Repo.Graph.Len(), len(st.Repo.Index))
	}

	hint := "ctrl+z undo  ctrl+l clear  ctrl+c quit"
	if m.player != nil {
		hint = "space pause  n skip  +/- speed  esc stop  q quit"
	}
	msg := m.notice
	if msg == "" {
		msg = m.tooltip
	}
	if msg != "" {
		left += "  │ " + msg
	}

	pad := max(m.width-lipgloss.Width(left)-lipgloss.Width(hint)-2, 1)
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", pad) + dimStyle.Render(hint))
}

// RunShell starts the interactive shell for loop.
func RunShell(loop *shell.Loop, opts Options) error {
	p := tea.NewProgram(NewShell(loop, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
