package speech

// Status represents the playback controller's current state.
type Status int

const (
	// StatusIdle indicates no playback activity and no live audio session.
	StatusIdle Status = iota
	// StatusGenerating indicates a synthesis request is in flight.
	StatusGenerating
	// StatusLoading indicates audio was received and is being prepared.
	StatusLoading
	// StatusPlaying indicates audio is actively playing.
	StatusPlaying
	// StatusPaused indicates playback is paused mid-stream.
	StatusPaused
	// StatusError indicates the last attempt failed; auto-resets to idle.
	StatusError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusGenerating:
		return "generating"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsBusy reports whether a synthesis request is currently in flight.
// While busy, further speak requests are ignored so duplicates cannot
// be issued.
func (s Status) IsBusy() bool {
	return s == StatusGenerating || s == StatusLoading
}

// IsAudible reports whether a live audio session exists.
func (s Status) IsAudible() bool {
	return s == StatusPlaying || s == StatusPaused
}

// CanSpeak reports whether a fresh synthesis request may be started.
func (s Status) CanSpeak() bool {
	return s == StatusIdle || s == StatusError
}

// Machine validates transitions between playback states.
type Machine struct {
	current     Status
	transitions map[Status][]Status
	onEnter     map[Status]func()
}

// NewMachine creates a state machine seeded with the valid playback
// transitions.
func NewMachine() *Machine {
	return &Machine{
		current: StatusIdle,
		transitions: map[Status][]Status{
			StatusIdle:       {StatusGenerating},
			StatusGenerating: {StatusLoading, StatusError},
			StatusLoading:    {StatusPlaying, StatusError},
			StatusPlaying:    {StatusPaused, StatusIdle, StatusError},
			StatusPaused:     {StatusPlaying, StatusIdle},
			StatusError:      {StatusGenerating, StatusIdle},
		},
		onEnter: make(map[Status]func()),
	}
}

// Transition attempts to move to the given status. It returns false and
// leaves the machine untouched when the transition is not allowed.
func (m *Machine) Transition(to Status) bool {
	valid := false
	for _, s := range m.transitions[m.current] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	m.current = to
	if fn, ok := m.onEnter[to]; ok && fn != nil {
		fn()
	}
	return true
}

// Force moves to the given status without validation. Used for teardown,
// where any state must collapse back to idle.
func (m *Machine) Force(to Status) {
	m.current = to
	if fn, ok := m.onEnter[to]; ok && fn != nil {
		fn()
	}
}

// Current returns the current status.
func (m *Machine) Current() Status {
	return m.current
}

// OnEnter registers a callback invoked after entering the given status.
func (m *Machine) OnEnter(s Status, fn func()) {
	m.onEnter[s] = fn
}
