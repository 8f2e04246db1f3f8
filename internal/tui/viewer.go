package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/shell"
)

type tabID int

const (
	tabSummary tabID = iota
	tabCommands
	tabBranches
	tabCommits
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{
	"Summary", "Commands", "Branches", "Commits", "Timeline",
}

type eventKind string

const (
	kindCmd    eventKind = "CMD"
	kindFail   eventKind = "FAILED"
	kindCommit eventKind = "COMMIT"
)

var eventStyles = map[eventKind]lipgloss.Style{
	kindCmd:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	kindFail:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	kindCommit: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
}

type timelineEvent struct {
	ts   time.Time
	kind eventKind
	text string
}

// Viewer is the Bubble Tea model for browsing an exported transcript.
type Viewer struct {
	t         *bundle.Transcript
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	timeline  []timelineEvent
	// Commands tab: cursor position and expanded set
	cmdCursor int
	expanded  map[int]bool
}

// NewViewer creates a viewer for t read from filename.
func NewViewer(t *bundle.Transcript, filename string) Viewer {
	return Viewer{
		t:        t,
		filename: filepath.Base(filename),
		expanded: make(map[int]bool),
		timeline: buildTimeline(t),
	}
}

func (m Viewer) Init() tea.Cmd { return nil }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabTimeline {
				m.sortAsc = !m.sortAsc
				m.rebuild(tabTimeline)
				m.viewports[tabTimeline].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabCommands && m.cmdCursor > 0 {
				m.cmdCursor--
				m.rebuild(tabCommands)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabCommands && m.cmdCursor < len(m.t.Commands)-1 {
				m.cmdCursor++
				m.rebuild(tabCommands)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabCommands && len(m.t.Commands) > 0 {
				if m.t.Commands[m.cmdCursor].Output != "" {
					if m.expanded[m.cmdCursor] {
						delete(m.expanded, m.cmdCursor)
					} else {
						m.expanded[m.cmdCursor] = true
					}
					m.rebuild(tabCommands)
				}
				return m, nil
			}
		}
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Viewer) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  gitsim  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-5 jump  q quit"
	switch m.activeTab {
	case tabTimeline:
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  s sort (" + dir + ")"
	case tabCommands:
		hint += "  ↑/↓ select  enter show output"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := max(m.width-lipgloss.Width(hint)-len(pct)-2, 1)
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

func (m *Viewer) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := max(m.height-3, 1)
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Viewer) rebuild(t tabID) {
	if m.ready {
		m.viewports[t].SetContent(m.renderTab(t))
	}
}

func (m *Viewer) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabCommands:
		return m.renderCommands()
	case tabBranches:
		return m.renderBranches()
	case tabCommits:
		return m.renderCommits()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func (m *Viewer) renderSummary() string {
	s := m.t.Session
	var sb strings.Builder
	sb.WriteString(heading("Session Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Session:", s.ID)
	if s.Lesson != "" {
		row("Lesson:", s.Lesson)
	}
	row("Started:", s.StartTime.Format("2006-01-02 15:04:05 MST"))
	row("Exported:", s.EndTime.Format("2006-01-02 15:04:05 MST"))
	row("Duration:", s.Duration)
	if s.Author != "" {
		row("Author:", s.Author)
	}
	if s.RepoRoot != "" {
		row("Repository:", s.RepoRoot)
		row("HEAD:", m.t.Head)
	}

	failed := 0
	for _, c := range m.t.Commands {
		if c.Class == shell.Error.String() {
			failed++
		}
	}
	sb.WriteString("\n")
	sb.WriteString(heading("Counts"))
	row("Commands:", fmt.Sprintf("%d", len(m.t.Commands)))
	row("Failed:", fmt.Sprintf("%d", failed))
	row("Branches:", fmt.Sprintf("%d", len(m.t.Branches)))
	row("Commits:", fmt.Sprintf("%d", len(m.t.Commits)))
	return sb.String()
}

func (m *Viewer) renderCommands() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Commands (%d)", len(m.t.Commands))))
	if len(m.t.Commands) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, c := range m.t.Commands {
		hasOutput := c.Output != ""
		toggle := "    "
		if hasOutput {
			toggle = dimStyle.Render("  ▶ ")
			if m.expanded[i] {
				toggle = dimStyle.Render("  ▼ ")
			}
		}
		ts := ""
		if !c.Timestamp.IsZero() {
			ts = timeStyle.Render(c.Timestamp.Format("15:04:05")) + "  "
		}
		raw := c.Raw
		if c.Class == shell.Error.String() {
			raw = eventStyles[kindFail].Render(raw)
		}
		row := fmt.Sprintf("%s%s%s", toggle, ts, raw)
		if i == m.cmdCursor {
			row = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237")).Width(max(m.width-2, 1)).Render(row)
		}
		sb.WriteString(row + "\n")
		if m.expanded[i] && hasOutput {
			class := shell.ParseClass(c.Class)
			style := classStyles[class]
			for _, line := range strings.Split(c.Output, "\n") {
				sb.WriteString("      " + style.Render(line) + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Viewer) renderBranches() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Branches (%d)", len(m.t.Branches))))
	if len(m.t.Branches) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	names := make([]string, 0, len(m.t.Branches))
	for name := range m.t.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id := m.t.Branches[name]
		if id == "" {
			id = "(unborn)"
		} else if len(id) > 7 {
			id = id[:7]
		}
		label := name
		if name == m.t.Head {
			label = kindStyles[render.BranchCurrent].Render("* " + name)
		}
		sb.WriteString(bullet(fmt.Sprintf("%-24s %s", label, dimStyle.Render(id))))
	}
	return sb.String()
}

func (m *Viewer) renderCommits() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Commits (%d)", len(m.t.Commits))))
	if len(m.t.Commits) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, c := range m.t.Commits {
		id := c.ID
		if len(id) > 7 {
			id = id[:7]
		}
		merge := ""
		if len(c.Parents) > 1 {
			merge = dimStyle.Render(" (merge)")
		}
		msg, _, _ := strings.Cut(c.Message, "\n")
		sb.WriteString(fmt.Sprintf("  %s  %s%s\n", eventStyles[kindCommit].Render(id), msg, merge))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("           %s, %s", c.Author, c.Timestamp.Format("2006-01-02 15:04:05"))) + "\n\n")
	}
	return sb.String()
}

func (m *Viewer) renderTimeline() string {
	var sb strings.Builder

	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Timeline (%s)", dir)))

	events := make([]timelineEvent, len(m.timeline))
	copy(events, m.timeline)
	if m.sortAsc {
		sort.SliceStable(events, func(i, j int) bool { return events[i].ts.Before(events[j].ts) })
	} else {
		sort.SliceStable(events, func(i, j int) bool { return events[i].ts.After(events[j].ts) })
	}

	if len(events) == 0 {
		sb.WriteString(dimStyle.Render("  (no timestamped events in this session)") + "\n")
		return sb.String()
	}
	for _, ev := range events {
		ts := timeStyle.Render(ev.ts.Format("15:04:05"))
		badge := eventStyles[ev.kind].Render(fmt.Sprintf("  %-8s", string(ev.kind)))
		sb.WriteString(ts + badge + "  " + ev.text + "\n\n")
	}
	return sb.String()
}

func buildTimeline(t *bundle.Transcript) []timelineEvent {
	var events []timelineEvent
	for _, c := range t.Commands {
		if c.Timestamp.IsZero() {
			continue
		}
		k := kindCmd
		if c.Class == shell.Error.String() {
			k = kindFail
		}
		events = append(events, timelineEvent{ts: c.Timestamp, kind: k, text: c.Raw})
	}
	for _, c := range t.Commits {
		if c.Timestamp.IsZero() {
			continue
		}
		msg, _, _ := strings.Cut(c.Message, "\n")
		events = append(events, timelineEvent{ts: c.Timestamp, kind: kindCommit, text: msg})
	}
	return events
}

// RunViewer starts the viewer for t.
func RunViewer(t *bundle.Transcript, filename string) error {
	p := tea.NewProgram(NewViewer(t, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
