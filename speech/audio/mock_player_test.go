package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

func collectEvent(t *testing.T, events <-chan speech.Event) speech.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event stream closed early")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return speech.Event{}
	}
}

// TestMockPlayerLifecycle tests the ready/ended event sequence and
// stream closure.
func TestMockPlayerLifecycle(t *testing.T) {
	p := NewMockPlayer()
	audio := &speech.Audio{Data: []byte("x"), MIMEType: "audio/mpeg"}

	if err := p.Play(audio); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if ev := collectEvent(t, p.Events()); ev.Type != speech.EventReady {
		t.Errorf("first event = %s, want ready", ev.Type)
	}

	p.EmitEnded()
	if ev := collectEvent(t, p.Events()); ev.Type != speech.EventEnded {
		t.Errorf("second event = %s, want ended", ev.Type)
	}

	if _, ok := <-p.Events(); ok {
		t.Error("event stream not closed after ended")
	}

	if got := p.Played(); len(got) != 1 || got[0] != audio {
		t.Errorf("Played() = %v", got)
	}
}

// TestMockPlayerFailure tests EmitFailed delivery and closure.
func TestMockPlayerFailure(t *testing.T) {
	p := NewMockPlayer()
	p.SetAutoReady(false)
	if err := p.Play(&speech.Audio{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	cause := errors.New("device gone")
	p.EmitFailed(cause)

	ev := collectEvent(t, p.Events())
	if ev.Type != speech.EventFailed || !errors.Is(ev.Err, cause) {
		t.Errorf("event = %+v, want failed with cause", ev)
	}

	if _, ok := <-p.Events(); ok {
		t.Error("event stream not closed after failure")
	}
}

// TestMockPlayerStopIdempotent tests that repeated stops are safe and
// counted.
func TestMockPlayerStopIdempotent(t *testing.T) {
	p := NewMockPlayer()
	p.Play(&speech.Audio{})
	p.Stop()
	p.Stop()
	p.Stop()

	if p.StopCount() != 3 {
		t.Errorf("StopCount() = %d, want 3", p.StopCount())
	}
}

// TestMockPlayerErrorInjection tests injected control errors.
func TestMockPlayerErrorInjection(t *testing.T) {
	p := NewMockPlayer()
	cause := errors.New("busy")

	p.SetPlayError(cause)
	if err := p.Play(&speech.Audio{}); !errors.Is(err, cause) {
		t.Errorf("Play() error = %v, want injected", err)
	}
	if len(p.Played()) != 0 {
		t.Error("failed Play recorded a payload")
	}

	p.SetPlayError(nil)
	p.SetPauseError(cause)
	p.SetResumeError(cause)
	if err := p.Pause(); !errors.Is(err, cause) {
		t.Errorf("Pause() error = %v, want injected", err)
	}
	if err := p.Resume(); !errors.Is(err, cause) {
		t.Errorf("Resume() error = %v, want injected", err)
	}
	if p.PauseCount() != 0 || p.ResumeCount() != 0 {
		t.Error("failed control calls were counted")
	}
}
