package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func recorder() (*[]string, func(string) error) {
	var ran []string
	return &ran, func(line string) error {
		ran = append(ran, line)
		return nil
	}
}

func TestTickTypesThenExecutes(t *testing.T) {
	ran, exec := recorder()
	p := New([]string{"ls", "pwd"}, exec)
	require.NoError(t, p.Start())
	assert.Equal(t, Typing, p.State())

	ev := p.Tick()
	assert.Equal(t, EventTyped, ev.Kind)
	assert.Equal(t, "l", ev.Text)
	ev = p.Tick()
	assert.Equal(t, "ls", ev.Text)
	assert.Equal(t, Executing, p.State())

	ev = p.Tick()
	assert.Equal(t, EventExecuted, ev.Kind)
	assert.Equal(t, []string{"ls"}, *ran)
	i, typed := p.Typed()
	assert.Equal(t, 1, i)
	assert.Equal(t, "", typed)

	for p.State() != Done {
		p.Tick()
	}
	assert.Equal(t, []string{"ls", "pwd"}, *ran)
	assert.Equal(t, EventDone, p.Tick().Kind)
}

func TestPauseMidCharacterAndResume(t *testing.T) {
	ran, exec := recorder()
	p := New([]string{"echo hi"}, exec)
	require.NoError(t, p.Start())
	p.Tick()
	p.Tick()
	p.Pause()
	assert.Equal(t, Paused, p.State())
	for i := 0; i < 5; i++ {
		assert.Equal(t, EventNone, p.Tick().Kind)
	}
	_, typed := p.Typed()
	assert.Equal(t, "ec", typed)

	p.Resume()
	assert.Equal(t, Typing, p.State())
	assert.Equal(t, "ech", p.Tick().Text)
	assert.Empty(t, *ran)
}

func TestSkipExecutesImmediately(t *testing.T) {
	ran, exec := recorder()
	p := New([]string{"git status", "git log"}, exec)
	require.NoError(t, p.Start())
	p.Tick()
	ev := p.Skip()
	assert.Equal(t, EventExecuted, ev.Kind)
	assert.Equal(t, []string{"git status"}, *ran)
	assert.Equal(t, Typing, p.State())

	p.Pause()
	p.Skip()
	assert.Equal(t, []string{"git status", "git log"}, *ran)
	assert.Equal(t, Done, p.State())
}

func TestSetSpeedClampsAndScalesDelay(t *testing.T) {
	p := New([]string{"ls"}, nil)
	require.NoError(t, p.Start())
	p.SetSpeed(100)
	assert.Equal(t, MaxSpeed, p.Speed())
	assert.Equal(t, DefaultCharDelay/8, p.Delay())
	p.SetSpeed(0)
	assert.Equal(t, MinSpeed, p.Speed())
	assert.Equal(t, DefaultCharDelay*4, p.Delay())
	p.SetSpeed(2)
	assert.Equal(t, 2.0, p.Speed())
}

func TestStartWhileRunningIsBusy(t *testing.T) {
	p := New([]string{"ls"}, nil)
	require.NoError(t, p.Start())
	assert.ErrorIs(t, p.Start(), ErrBusy)
	p.Stop()
	assert.NoError(t, p.Start(), "a finished replay can restart")
}

func TestExecErrorEndsReplay(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	p := New([]string{"a", "b"}, func(string) error {
		calls++
		return boom
	})
	err := p.Run(context.Background(), func(context.Context, time.Duration) error { return nil }, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, p.Err(), boom)
}

func TestRunHonoursCancellation(t *testing.T) {
	ran, exec := recorder()
	p := New([]string{"one", "two", "three"}, exec)
	ctx, cancel := context.WithCancel(context.Background())
	var events int
	err := p.Run(ctx, func(context.Context, time.Duration) error { return nil }, func(ev Event) {
		events++
		if ev.Kind == EventExecuted && ev.Text == "one" {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"one"}, *ran)
	assert.Positive(t, events)
}

func TestRunWithRealSleep(t *testing.T) {
	ran, exec := recorder()
	p := New([]string{"ls"}, exec)
	p.CharDelay = time.Millisecond
	p.CommandDelay = time.Millisecond
	p.SetSpeed(MaxSpeed)
	require.NoError(t, p.Run(context.Background(), Sleep, nil))
	assert.Equal(t, []string{"ls"}, *ran)
}

// Feature: gitsim, Property 11: Replay executes every command exactly once,
// in recorded order, whatever pause, resume, skip and speed changes happen.
func TestPropertyReplayPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		commands := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{0,6}`), 0, 8).Draw(t, "commands")
		ran, exec := recorder()
		p := New(commands, exec)
		if err := p.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}

		actions := rapid.SliceOfN(rapid.IntRange(0, 4), 0, 100).Draw(t, "actions")
		for _, a := range actions {
			switch a {
			case 0, 1:
				p.Tick()
			case 2:
				p.Toggle()
			case 3:
				p.Skip()
			case 4:
				p.SetSpeed(rapid.Float64Range(0, 10).Draw(t, "speed"))
			}
			if len(*ran) > len(commands) {
				t.Fatalf("executed %d of %d commands", len(*ran), len(commands))
			}
			for i, line := range *ran {
				if line != commands[i] {
					t.Fatalf("command %d: ran %q, want %q", i, line, commands[i])
				}
			}
		}

		p.Resume()
		for steps := 0; p.State() != Done; steps++ {
			if steps > 1000 {
				t.Fatalf("replay did not finish")
			}
			p.Tick()
		}
		if len(*ran) != len(commands) {
			t.Fatalf("ran %d commands, want %d", len(*ran), len(commands))
		}
	})
}
