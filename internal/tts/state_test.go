package tts

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateDispatched, "dispatched"},
		{StateSynthesizing, "synthesizing"},
		{StatePlaying, "playing"},
		{StateDone, "done"},
		{StateErrored, "errored"},
		{State(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []State
		valid []bool
	}{
		{
			name:  "happy path",
			path:  []State{StateDispatched, StateSynthesizing, StatePlaying, StateDone},
			valid: []bool{true, true, true, true},
		},
		{
			name:  "error while synthesizing",
			path:  []State{StateDispatched, StateSynthesizing, StateErrored},
			valid: []bool{true, true, true},
		},
		{
			name:  "error on dispatch",
			path:  []State{StateDispatched, StateErrored},
			valid: []bool{true, true},
		},
		{
			name:  "cannot skip synthesis",
			path:  []State{StateDispatched, StatePlaying},
			valid: []bool{true, false},
		},
		{
			name:  "idle cannot error",
			path:  []State{StateErrored},
			valid: []bool{false},
		},
		{
			name:  "terminal states are final",
			path:  []State{StateDispatched, StateErrored, StateDispatched},
			valid: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for i, to := range tt.path {
				if got := sm.Transition(to); got != tt.valid[i] {
					t.Errorf("step %d: Transition(%v) = %v, want %v", i, to, got, tt.valid[i])
				}
			}
		})
	}
}

func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()
	var entered []State
	for _, s := range []State{StateDispatched, StateSynthesizing} {
		sm.OnEnter(s, func() { entered = append(entered, s) })
	}

	sm.Transition(StateDispatched)
	sm.Transition(StatePlaying) // rejected, no callback
	sm.Transition(StateSynthesizing)

	if len(entered) != 2 || entered[0] != StateDispatched || entered[1] != StateSynthesizing {
		t.Errorf("entered = %v", entered)
	}
	if sm.Current() != StateSynthesizing || sm.Current().Terminal() {
		t.Errorf("Current() = %v", sm.Current())
	}
}
