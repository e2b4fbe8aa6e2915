package speech

import "testing"

// TestStatusString tests the String() method for Status.
func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusIdle, "idle"},
		{StatusGenerating, "generating"},
		{StatusLoading, "loading"},
		{StatusPlaying, "playing"},
		{StatusPaused, "paused"},
		{StatusError, "error"},
		{Status(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.status.String(); result != tt.expected {
				t.Errorf("Status.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestStatusPredicates tests IsBusy, IsAudible and CanSpeak.
func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status  Status
		busy    bool
		audible bool
		speak   bool
	}{
		{StatusIdle, false, false, true},
		{StatusGenerating, true, false, false},
		{StatusLoading, true, false, false},
		{StatusPlaying, false, true, false},
		{StatusPaused, false, true, false},
		{StatusError, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.IsBusy(); got != tt.busy {
				t.Errorf("IsBusy() = %v, want %v", got, tt.busy)
			}
			if got := tt.status.IsAudible(); got != tt.audible {
				t.Errorf("IsAudible() = %v, want %v", got, tt.audible)
			}
			if got := tt.status.CanSpeak(); got != tt.speak {
				t.Errorf("CanSpeak() = %v, want %v", got, tt.speak)
			}
		})
	}
}

// TestMachineValidTransitions tests the allowed transition table.
func TestMachineValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []Status
	}{
		{"full playback cycle", []Status{StatusGenerating, StatusLoading, StatusPlaying, StatusIdle}},
		{"pause and resume", []Status{StatusGenerating, StatusLoading, StatusPlaying, StatusPaused, StatusPlaying}},
		{"stop while paused", []Status{StatusGenerating, StatusLoading, StatusPlaying, StatusPaused, StatusIdle}},
		{"generation failure", []Status{StatusGenerating, StatusError, StatusIdle}},
		{"loading failure", []Status{StatusGenerating, StatusLoading, StatusError, StatusIdle}},
		{"retry from error", []Status{StatusGenerating, StatusError, StatusGenerating}},
		{"playback failure", []Status{StatusGenerating, StatusLoading, StatusPlaying, StatusError, StatusIdle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			for _, to := range tt.path {
				if !m.Transition(to) {
					t.Fatalf("transition %s -> %s rejected", m.Current(), to)
				}
			}
		})
	}
}

// TestMachineInvalidTransitions tests that disallowed transitions are
// rejected and do not change the current status.
func TestMachineInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from []Status // valid path to reach the starting state
		to   Status
	}{
		{"idle cannot load", nil, StatusLoading},
		{"idle cannot play", nil, StatusPlaying},
		{"idle cannot pause", nil, StatusPaused},
		{"generating cannot play directly", []Status{StatusGenerating}, StatusPlaying},
		{"generating cannot pause", []Status{StatusGenerating}, StatusPaused},
		{"loading cannot pause", []Status{StatusGenerating, StatusLoading}, StatusPaused},
		{"paused cannot error", []Status{StatusGenerating, StatusLoading, StatusPlaying, StatusPaused}, StatusError},
		{"error cannot load", []Status{StatusGenerating, StatusError}, StatusLoading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			for _, s := range tt.from {
				if !m.Transition(s) {
					t.Fatalf("setup transition to %s rejected", s)
				}
			}
			before := m.Current()
			if m.Transition(tt.to) {
				t.Fatalf("transition %s -> %s accepted, want rejected", before, tt.to)
			}
			if m.Current() != before {
				t.Errorf("rejected transition changed status to %s", m.Current())
			}
		})
	}
}

// TestMachineForce tests that Force bypasses validation.
func TestMachineForce(t *testing.T) {
	m := NewMachine()
	m.Transition(StatusGenerating)

	m.Force(StatusIdle)
	if m.Current() != StatusIdle {
		t.Errorf("Force(StatusIdle) left status %s", m.Current())
	}
}

// TestMachineOnEnter tests that enter callbacks fire on transition.
func TestMachineOnEnter(t *testing.T) {
	m := NewMachine()

	entered := 0
	m.OnEnter(StatusGenerating, func() { entered++ })

	m.Transition(StatusGenerating)
	if entered != 1 {
		t.Errorf("enter callback fired %d times, want 1", entered)
	}

	// Rejected transitions must not fire callbacks.
	m.OnEnter(StatusPaused, func() { t.Error("enter callback fired for rejected transition") })
	m.Transition(StatusPaused)
}
