package tts

// State is the stage of one generation request.
type State int

const (
	// StateIdle is a request not yet submitted.
	StateIdle State = iota
	// StateDispatched is a validated request handed to its worker.
	StateDispatched
	// StateSynthesizing is a request waiting on the model.
	StateSynthesizing
	// StatePlaying is a request whose audio is being played.
	StatePlaying
	// StateDone is a request that finished playing.
	StateDone
	// StateErrored is a request that failed at some stage.
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatched:
		return "dispatched"
	case StateSynthesizing:
		return "synthesizing"
	case StatePlaying:
		return "playing"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}

// StateMachine tracks one request through its states. It is owned by a
// single worker goroutine and is not safe for concurrent use.
type StateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:         {StateDispatched},
			StateDispatched:   {StateSynthesizing, StateErrored},
			StateSynthesizing: {StatePlaying, StateErrored},
			StatePlaying:      {StateDone, StateErrored},
		},
		onEnter: make(map[State]func()),
	}
}

// Transition moves to the given state if the move is allowed and reports
// whether it happened.
func (sm *StateMachine) Transition(to State) bool {
	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	if fn := sm.onEnter[to]; fn != nil {
		fn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	return sm.current
}

// OnEnter registers a callback run after entering a state.
func (sm *StateMachine) OnEnter(state State, fn func()) {
	sm.onEnter[state] = fn
}
