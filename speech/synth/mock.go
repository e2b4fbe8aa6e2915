package synth

import (
	"context"
	"sync"
	"time"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// Mock implements the Synthesizer interface for testing.
type Mock struct {
	mu sync.Mutex

	// Configuration
	name  string
	delay time.Duration
	gate  chan struct{} // when set, Synthesize blocks until released
	audio *speech.Audio

	// Control for testing
	failureError error

	// State
	callCount int
	lastReq   speech.SpeechRequest
}

// NewMock creates a mock synthesizer returning a small fixed payload.
func NewMock() *Mock {
	return &Mock{
		name: "mock",
		audio: &speech.Audio{
			Data:     []byte("mock-mpeg-frames"),
			MIMEType: "audio/mpeg",
		},
	}
}

// Synthesize simulates one synthesis call. It honors the configured
// delay or gate, then returns either the injected failure or the
// configured payload.
func (m *Mock) Synthesize(ctx context.Context, req speech.SpeechRequest) (*speech.Audio, error) {
	m.mu.Lock()
	m.callCount++
	m.lastReq = req
	delay, gate, failure, audio := m.delay, m.gate, m.failureError, m.audio
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failure != nil {
		return nil, failure
	}
	return audio, nil
}

// Name identifies the backend.
func (m *Mock) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Test control methods

// SetName overrides the backend name reported by Name.
func (m *Mock) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

// SetDelay sets the simulated processing delay.
func (m *Mock) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
}

// Gate makes subsequent calls block until the returned function is
// invoked. Used to hold the controller in the generating state.
func (m *Mock) Gate() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// SetFailure configures the synthesizer to fail with the given error.
func (m *Mock) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureError = err
}

// ClearFailure resets the synthesizer to normal operation.
func (m *Mock) ClearFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureError = nil
}

// SetAudio replaces the payload returned on success.
func (m *Mock) SetAudio(audio *speech.Audio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio = audio
}

// CallCount returns the number of Synthesize calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request payload.
func (m *Mock) LastRequest() speech.SpeechRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
