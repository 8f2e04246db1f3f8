package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/replay"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

func newLoop() *shell.Loop {
	clock := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	sh := shell.New(vcs.New(vcs.Signature{Name: "S", Email: "s@x"}, clock), clock)
	return shell.NewLoop(sh, session.NewState("student", clock))
}

func sized(m tea.Model) tea.Model {
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func typeLine(m tea.Model, line string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestShellSubmitShowsOutputAndPersists(t *testing.T) {
	loop := newLoop()
	var saved []*session.State
	m := sized(NewShell(loop, Options{OnCommand: func(st *session.State) { saved = append(saved, st) }}))

	m = typeLine(m, "git init")
	m = typeLine(m, "pwd")
	sm := m.(ShellModel)

	out := strings.Join(sm.lines, "\n")
	assert.Contains(t, out, "Initialized empty Git repository")
	assert.Contains(t, out, "/home/student")
	assert.Len(t, saved, 2)
	assert.True(t, loop.State().Repo.Initialized)
	assert.Equal(t, []string{"git init", "pwd"}, sm.history)
	assert.Contains(t, sm.View(), "(main)")
}

func TestShellUndoAndHistoryRecall(t *testing.T) {
	loop := newLoop()
	m := sized(NewShell(loop, Options{}))
	m = typeLine(m, "mkdir work")
	require.True(t, loop.State().FS.IsDir("/", "/home/student/work"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	assert.False(t, loop.State().FS.IsDir("/", "/home/student/work"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "mkdir work", m.(ShellModel).input.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "", m.(ShellModel).input.Value())
}

func TestShellClearAndExit(t *testing.T) {
	m := sized(NewShell(newLoop(), Options{}))
	m = typeLine(m, "echo hi")
	m = typeLine(m, "clear")
	assert.Empty(t, m.(ShellModel).lines)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("exit")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// drive feeds replay ticks until the replay ends.
func drive(t *testing.T, m tea.Model) ShellModel {
	t.Helper()
	for i := 0; i < 10000; i++ {
		sm := m.(ShellModel)
		if sm.player == nil {
			return sm
		}
		m, _ = m.Update(replayTickMsg{gen: sm.gen})
	}
	t.Fatal("replay did not finish")
	return ShellModel{}
}

func TestShellReplayRunsEveryCommand(t *testing.T) {
	loop := newLoop()
	m := sized(NewShell(loop, Options{Replay: []string{"git init", "touch a.txt", "git add a.txt"}}))
	m, _ = m.Update(m.Init()())
	sm := m.(ShellModel)
	require.NotNil(t, sm.player)
	assert.True(t, loop.Replaying())

	_, err := loop.Submit("ls")
	assert.ErrorIs(t, err, shell.ErrReplayInProgress)

	// Typing is ignored while replaying.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	sm = drive(t, m)
	assert.False(t, loop.Replaying())
	assert.Equal(t, "replay finished", sm.notice)
	assert.Contains(t, loop.State().Repo.Index, "a.txt")
	assert.Equal(t, []string{"git init", "touch a.txt", "git add a.txt"}, sm.history)
}

func TestShellReplayKeys(t *testing.T) {
	loop := newLoop()
	m := sized(NewShell(loop, Options{Replay: []string{"pwd", "ls"}}))
	m, _ = m.Update(startReplayMsg{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, replay.Paused, m.(ShellModel).player.State())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	assert.Equal(t, 2.0, m.(ShellModel).player.Speed())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Len(t, loop.State().History, 1, "skip runs the current command")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	sm := m.(ShellModel)
	assert.Nil(t, sm.player)
	assert.False(t, loop.Replaying())
	assert.Len(t, loop.State().History, 1)
}

func sampleTranscript() *bundle.Transcript {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &bundle.Transcript{
		Session: bundle.SessionMeta{ID: "abc", StartTime: ts, EndTime: ts.Add(time.Minute), Duration: "1m0s"},
		Commands: []bundle.Entry{
			{Raw: "git init", Timestamp: ts, Class: "success", Output: "Initialized empty Git repository"},
			{Raw: "git commit", Timestamp: ts.Add(time.Second), Class: "error", Output: "nothing to commit"},
		},
		Branches: map[string]string{"main": "0123456789"},
		Head:     "main",
		Commits:  []bundle.CommitSummary{{ID: "0123456789", Message: "first", Author: "S <s@x>", Timestamp: ts}},
	}
}

func TestViewerTabsAndExpansion(t *testing.T) {
	m := sized(NewViewer(sampleTranscript(), "/tmp/out.md"))
	assert.Contains(t, m.View(), "Session Summary")
	assert.Contains(t, m.View(), "out.md")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	v := m.(Viewer)
	assert.Equal(t, tabCommands, v.activeTab)
	assert.NotContains(t, v.renderCommands(), "Initialized empty")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v = m.(Viewer)
	assert.Contains(t, v.renderCommands(), "Initialized empty")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabBranches, m.(Viewer).activeTab)
	v = m.(Viewer)
	assert.Contains(t, v.renderBranches(), "0123456")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	v = m.(Viewer)
	assert.Contains(t, v.renderTimeline(), "FAILED")
}

func TestBuildTimelineSkipsZeroTimes(t *testing.T) {
	tr := sampleTranscript()
	tr.Commands = append(tr.Commands, bundle.Entry{Raw: "untimed"})
	events := buildTimeline(tr)
	assert.Len(t, events, 3)
	assert.Equal(t, kindFail, events[1].kind)
	assert.Equal(t, kindCommit, events[2].kind)
}
