// Package replay re-executes a recorded command sequence with a typing
// animation. The Player is an explicit state machine advanced one step at a
// time by Tick, so a UI can drive it from its own timer and Run can drive it
// from a plain loop.
package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fakeyudi/gitsim/internal/logging"
)

// State is the player's position in its lifecycle.
type State int

const (
	Idle State = iota
	Typing
	Executing
	Paused
	Done
)

func (s State) String() string {
	switch s {
	case Typing:
		return "typing"
	case Executing:
		return "executing"
	case Paused:
		return "paused"
	case Done:
		return "done"
	}
	return "idle"
}

// Speed limits.
const (
	MinSpeed = 0.25
	MaxSpeed = 8.0
)

// Default delays at speed 1.
const (
	DefaultCharDelay    = 40 * time.Millisecond
	DefaultCommandDelay = 600 * time.Millisecond
	pollDelay           = 50 * time.Millisecond
)

// ErrBusy is returned by Start when the player is already running.
var ErrBusy = errors.New("replay already running")

// EventKind says what a Tick did.
type EventKind int

const (
	// EventNone means nothing advanced (idle or paused).
	EventNone EventKind = iota
	// EventTyped means one more character of the current command is visible.
	EventTyped
	// EventExecuted means the current command ran.
	EventExecuted
	// EventDone means the sequence is finished.
	EventDone
)

// Event describes one step.
type Event struct {
	Kind EventKind
	// Index of the command the step belongs to.
	Index int
	// Text is the command text typed so far, or the whole command once
	// executed.
	Text string
	// Err is the error returned by Exec, which also ends the replay.
	Err error
}

// Player replays Commands by calling Exec for each, in order.
type Player struct {
	Commands     []string
	Exec         func(line string) error
	CharDelay    time.Duration
	CommandDelay time.Duration

	mu     sync.Mutex
	state  State
	resume State // state to return to from Paused
	index  int
	typed  int // runes of Commands[index] shown so far
	speed  float64
	err    error
}

// New returns an idle player at speed 1.
func New(commands []string, exec func(string) error) *Player {
	return &Player{
		Commands:     commands,
		Exec:         exec,
		CharDelay:    DefaultCharDelay,
		CommandDelay: DefaultCommandDelay,
		speed:        1,
	}
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start begins the replay from the first command.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Typing, Executing, Paused:
		return ErrBusy
	}
	p.index, p.typed, p.err = 0, 0, nil
	if p.speed == 0 {
		p.speed = 1
	}
	p.setState(Typing)
	if len(p.Commands) == 0 {
		p.setState(Done)
	}
	return nil
}

// Pause halts the replay, between commands or mid-command.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Typing || p.state == Executing {
		p.resume = p.state
		p.setState(Paused)
	}
}

// Resume continues a paused replay where it stopped.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Paused {
		p.setState(p.resume)
	}
}

// Toggle pauses a running replay or resumes a paused one.
func (p *Player) Toggle() {
	if p.State() == Paused {
		p.Resume()
		return
	}
	p.Pause()
}

// Stop abandons the replay.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setState(Done)
}

// SetSpeed sets the playback speed multiplier, clamped to
// [MinSpeed, MaxSpeed].
func (p *Player) SetSpeed(f float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = clamp(f)
}

// Speed returns the playback speed multiplier.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

func clamp(f float64) float64 {
	switch {
	case f != f || f < MinSpeed: // NaN or too slow
		return MinSpeed
	case f > MaxSpeed:
		return MaxSpeed
	}
	return f
}

// Typed returns the index of the current command and the part of it typed
// so far.
func (p *Player) Typed() (int, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index, p.typedText()
}

// Err returns the error that ended the replay, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Player) typedText() string {
	if p.index >= len(p.Commands) {
		return ""
	}
	r := []rune(p.Commands[p.index])
	return string(r[:min(p.typed, len(r))])
}

// Delay is how long to wait before the next Tick at the current speed.
func (p *Player) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var d time.Duration
	switch p.state {
	case Typing:
		d = p.CharDelay
	case Executing:
		d = p.CommandDelay
	default:
		return pollDelay
	}
	return time.Duration(float64(d) / p.speed)
}

// Tick advances the replay by one step: one character while typing, or the
// execution of the fully typed command.
func (p *Player) Tick() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Typing:
		cmd := []rune(p.Commands[p.index])
		if p.typed < len(cmd) {
			p.typed++
		}
		if p.typed >= len(cmd) {
			p.setState(Executing)
		}
		return Event{Kind: EventTyped, Index: p.index, Text: p.typedText()}
	case Executing:
		return p.execute()
	case Done:
		return Event{Kind: EventDone, Index: p.index, Err: p.err}
	}
	return Event{Kind: EventNone, Index: p.index, Text: p.typedText()}
}

// Skip finishes typing the current command and runs it immediately. A
// paused replay stays paused afterwards.
func (p *Player) Skip() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Typing, Executing:
	case Paused:
		ev := p.execute()
		if p.state != Done {
			p.resume = Typing
			p.setState(Paused)
		}
		return ev
	default:
		return Event{Kind: EventNone, Index: p.index}
	}
	return p.execute()
}

func (p *Player) execute() Event {
	i := p.index
	line := p.Commands[i]
	var err error
	if p.Exec != nil {
		err = p.Exec(line)
	}
	p.index++
	p.typed = 0
	switch {
	case err != nil:
		p.err = err
		p.setState(Done)
	case p.index >= len(p.Commands):
		p.setState(Done)
	default:
		p.setState(Typing)
	}
	return Event{Kind: EventExecuted, Index: i, Text: line, Err: err}
}

func (p *Player) setState(s State) {
	if p.state != s {
		logging.L().Debug("replay transition", "from", p.state, "to", s, "index", p.index)
	}
	p.state = s
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run starts the replay if it is idle and drives it until it finishes or
// ctx is cancelled. onEvent, when non-nil, sees every step that advanced.
func (p *Player) Run(ctx context.Context, sleep Sleeper, onEvent func(Event)) error {
	if sleep == nil {
		sleep = Sleep
	}
	if p.State() == Idle {
		if err := p.Start(); err != nil {
			return err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := p.Tick()
		if ev.Kind == EventDone {
			return ev.Err
		}
		if ev.Kind != EventNone && onEvent != nil {
			onEvent(ev)
		}
		if err := sleep(ctx, p.Delay()); err != nil {
			return err
		}
	}
}
