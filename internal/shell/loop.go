package shell

import (
	"errors"
	"sync"

	"github.com/fakeyudi/gitsim/internal/session"
)

// ErrReplayInProgress is returned by Submit while a replay owns the loop.
var ErrReplayInProgress = errors.New("a replay is running; wait for it to finish or stop it first")

// ErrNothingToUndo is returned by Undo when no earlier state exists.
var ErrNothingToUndo = errors.New("nothing to undo")

// maxUndo bounds the undo stack.
const maxUndo = 100

// Loop owns the current state of an interactive session. All methods are
// safe for concurrent use.
type Loop struct {
	mu        sync.Mutex
	shell     *Shell
	current   *session.State
	undo      []*session.State
	replaying bool
}

// NewLoop starts a loop at st.
func NewLoop(sh *Shell, st *session.State) *Loop {
	return &Loop{shell: sh, current: st}
}

// Shell returns the dispatcher the loop drives.
func (l *Loop) Shell() *Shell { return l.shell }

// State returns the current state. Callers must not modify it.
func (l *Loop) State() *session.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Submit executes a line typed by the user.
func (l *Loop) Submit(line string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.replaying {
		return Result{}, ErrReplayInProgress
	}
	return l.exec(line), nil
}

// Replay executes a line on behalf of a running replay.
func (l *Loop) Replay(line string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exec(line)
}

func (l *Loop) exec(line string) Result {
	res, next := l.shell.Execute(l.current, line)
	if next != l.current {
		l.undo = append(l.undo, l.current)
		if len(l.undo) > maxUndo {
			l.undo = l.undo[len(l.undo)-maxUndo:]
		}
		l.current = next
	}
	return res
}

// Save writes content to path through the editor contract and makes the
// result current.
func (l *Loop) Save(path, content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.replaying {
		return ErrReplayInProgress
	}
	next, err := l.shell.SaveFile(l.current, path, content)
	if err != nil {
		return err
	}
	l.undo = append(l.undo, l.current)
	l.current = next
	return nil
}

// Undo restores the state before the last command.
func (l *Loop) Undo() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.replaying {
		return ErrReplayInProgress
	}
	if len(l.undo) == 0 {
		return ErrNothingToUndo
	}
	l.current = l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	return nil
}

// SetReplaying marks the start or end of a replay.
func (l *Loop) SetReplaying(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaying = on
}

// Replaying reports whether a replay currently owns the loop.
func (l *Loop) Replaying() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.replaying
}

// Reset replaces the current state and clears the undo stack.
func (l *Loop) Reset(st *session.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = st
	l.undo = nil
}

// Check evaluates pred against the current state.
func (l *Loop) Check(pred session.Predicate) bool {
	return pred(l.State())
}
