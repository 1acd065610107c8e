package chat

import (
	"errors"
	"fmt"
	"sync"
)

// State is a chat exchange state.
type State int

const (
	StateIdle State = iota
	StateAwaitingSession
	StateSending
	StateStreamingPartial
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSession:
		return "awaiting-session"
	case StateSending:
		return "sending"
	case StateStreamingPartial:
		return "streaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// InFlight reports whether a request is outstanding.
func (s State) InFlight() bool {
	return s == StateAwaitingSession || s == StateSending || s == StateStreamingPartial
}

// Event drives a Machine.
type Event int

const (
	EventSend Event = iota
	EventSessionReady
	EventSnapshot
	EventComplete
	EventFail
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventSend:
		return "send"
	case EventSessionReady:
		return "session-ready"
	case EventSnapshot:
		return "snapshot"
	case EventComplete:
		return "complete"
	case EventFail:
		return "fail"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned by Fire when the event is not accepted in
// the current state.
var ErrInvalidTransition = errors.New("invalid chat transition")

type transition struct {
	from State
	on   Event
}

var transitions = map[transition]State{
	{StateIdle, EventSend}:   StateAwaitingSession,
	{StateDone, EventSend}:   StateAwaitingSession,
	{StateFailed, EventSend}: StateAwaitingSession,

	{StateAwaitingSession, EventSessionReady}: StateSending,
	{StateAwaitingSession, EventFail}:         StateFailed,

	{StateSending, EventSnapshot}:          StateStreamingPartial,
	{StateStreamingPartial, EventSnapshot}: StateStreamingPartial,

	{StateSending, EventComplete}:          StateDone,
	{StateStreamingPartial, EventComplete}: StateDone,
	{StateSending, EventFail}:              StateFailed,
	{StateStreamingPartial, EventFail}:     StateFailed,
}

// Machine tracks one exchange at a time. It is safe for concurrent use.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine returns a Machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fire applies ev and returns the new state. Reset is accepted from any
// state.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev == EventReset {
		m.state = StateIdle
		return m.state, nil
	}

	next, ok := transitions[transition{m.state, ev}]
	if !ok {
		return m.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, m.state)
	}
	m.state = next
	return next, nil
}
