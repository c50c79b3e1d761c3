package playback

// State is the lifecycle state of a playback session.
type State int

const (
	// StateIdle means nothing is loading or playing.
	StateIdle State = iota
	// StateLoading means audio is being synthesized.
	StateLoading
	// StatePlaying means audio is playing and the highlight is advancing.
	StatePlaying
	// StatePaused means playback is suspended and can resume where it stopped.
	StatePaused
	// StateCompleted means the item played to its end.
	StateCompleted
	// StateError is passed through on failure; the session then rests in
	// StateIdle with the error recorded.
	StateError
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Active reports whether the state holds a live clock.
func (s State) Active() bool {
	return s == StatePlaying || s == StatePaused
}

// StateMachine enforces the session transition table.
type StateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
	onExit      map[State]func()
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:      {StateLoading, StatePlaying},
			StateLoading:   {StatePlaying, StateError, StateIdle},
			StatePlaying:   {StatePaused, StateCompleted, StateError, StateIdle},
			StatePaused:    {StatePlaying, StateError, StateIdle},
			StateCompleted: {StateLoading, StatePlaying, StateIdle},
			StateError:     {StateIdle},
		},
		onEnter: make(map[State]func()),
		onExit:  make(map[State]func()),
	}
}

// Can reports whether a transition to the given state is allowed.
func (sm *StateMachine) Can(to State) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to move to the given state, running the exit callback
// of the old state and the enter callback of the new one.
func (sm *StateMachine) Transition(to State) bool {
	if !sm.Can(to) {
		return false
	}

	if exitFn, ok := sm.onExit[sm.current]; ok && exitFn != nil {
		exitFn()
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}

	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state State, fn func()) {
	sm.onEnter[state] = fn
}

// OnExit registers a callback for exiting a state.
func (sm *StateMachine) OnExit(state State, fn func()) {
	sm.onExit[state] = fn
}
