package playback

import "testing"

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []State
		want []bool
	}{
		{"load and play", []State{StateLoading, StatePlaying, StatePaused, StatePlaying, StateCompleted}, []bool{true, true, true, true, true}},
		{"cache hit", []State{StatePlaying}, []bool{true}},
		{"load failure", []State{StateLoading, StateError, StateIdle}, []bool{true, true, true}},
		{"idle cannot pause", []State{StatePaused}, []bool{false}},
		{"loading cannot pause", []State{StateLoading, StatePaused}, []bool{true, false}},
		{"completed replays", []State{StatePlaying, StateCompleted, StatePlaying}, []bool{true, true, true}},
		{"error only to idle", []State{StateLoading, StateError, StatePlaying}, []bool{true, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for i, to := range tt.path {
				if got := sm.Transition(to); got != tt.want[i] {
					t.Fatalf("step %d: Transition(%s) = %v, want %v", i, to, got, tt.want[i])
				}
			}
		})
	}
}

func TestStateMachineCallbacks(t *testing.T) {
	sm := NewStateMachine()
	var log []string
	sm.OnEnter(StatePlaying, func() { log = append(log, "enter playing") })
	sm.OnExit(StatePlaying, func() { log = append(log, "exit playing") })

	sm.Transition(StatePlaying)
	sm.Transition(StatePaused)
	sm.Transition(StateIdle)

	if len(log) != 2 || log[0] != "enter playing" || log[1] != "exit playing" {
		t.Errorf("callbacks = %v", log)
	}
	if sm.Current() != StateIdle {
		t.Errorf("Current() = %s", sm.Current())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle:      "idle",
		StateLoading:   "loading",
		StatePlaying:   "playing",
		StatePaused:    "paused",
		StateCompleted: "completed",
		StateError:     "error",
		State(99):      "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
