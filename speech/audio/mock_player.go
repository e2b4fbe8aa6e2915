package audio

import (
	"sync"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// MockPlayer implements the Player interface for testing.
type MockPlayer struct {
	mu sync.Mutex

	// Control for testing
	playError   error
	pauseError  error
	resumeError error
	autoReady   bool

	// State
	played      []*speech.Audio
	pauseCount  int
	resumeCount int
	stopCount   int

	events    chan speech.Event
	closeOnce sync.Once
}

// NewMockPlayer creates a mock player that emits EventReady on Play.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{
		autoReady: true,
		events:    make(chan speech.Event, 8),
	}
}

// Play records the payload and, unless disabled, emits EventReady.
func (p *MockPlayer) Play(audio *speech.Audio) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playError != nil {
		return p.playError
	}
	p.played = append(p.played, audio)
	if p.autoReady {
		p.events <- speech.Event{Type: speech.EventReady}
	}
	return nil
}

// Pause records the call.
func (p *MockPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pauseError != nil {
		return p.pauseError
	}
	p.pauseCount++
	return nil
}

// Resume records the call.
func (p *MockPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resumeError != nil {
		return p.resumeError
	}
	p.resumeCount++
	return nil
}

// Stop records the call and closes the event stream.
func (p *MockPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopCount++
	p.closeOnce.Do(func() { close(p.events) })
	return nil
}

// Events returns the lifecycle event stream.
func (p *MockPlayer) Events() <-chan speech.Event {
	return p.events
}

// Test control methods

// EmitReady emits EventReady, for tests that disable autoReady.
func (p *MockPlayer) EmitReady() {
	p.events <- speech.Event{Type: speech.EventReady}
}

// EmitEnded simulates the stream reaching its natural end.
func (p *MockPlayer) EmitEnded() {
	p.events <- speech.Event{Type: speech.EventEnded}
	p.closeOnce.Do(func() { close(p.events) })
}

// EmitFailed simulates a runtime playback failure.
func (p *MockPlayer) EmitFailed(err error) {
	p.events <- speech.Event{Type: speech.EventFailed, Err: err}
	p.closeOnce.Do(func() { close(p.events) })
}

// SetAutoReady controls whether Play emits EventReady itself.
func (p *MockPlayer) SetAutoReady(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoReady = on
}

// SetPlayError makes Play fail with the given error.
func (p *MockPlayer) SetPlayError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playError = err
}

// SetPauseError makes Pause fail with the given error.
func (p *MockPlayer) SetPauseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseError = err
}

// SetResumeError makes Resume fail with the given error.
func (p *MockPlayer) SetResumeError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumeError = err
}

// Played returns the payloads passed to Play.
func (p *MockPlayer) Played() []*speech.Audio {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*speech.Audio(nil), p.played...)
}

// PauseCount returns the number of Pause calls.
func (p *MockPlayer) PauseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauseCount
}

// ResumeCount returns the number of Resume calls.
func (p *MockPlayer) ResumeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resumeCount
}

// StopCount returns the number of Stop calls.
func (p *MockPlayer) StopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCount
}
