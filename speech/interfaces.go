// Package speech provides the text-to-speech playback controller: it
// turns rich text into spoken audio through a synthesis backend and
// manages the playback lifecycle (generate, load, play, pause, resume,
// stop, error recovery and resource cleanup).
package speech

import "context"

// Synthesizer converts a speech request into a synthesized audio payload.
type Synthesizer interface {
	// Synthesize performs one synthesis call. Implementations must honor
	// context cancellation and map backend failures onto the package's
	// error taxonomy (ErrRateLimited, ErrUpstreamUnavailable,
	// ErrSynthesisFailed).
	Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error)

	// Name identifies the backend for logging.
	Name() string
}

// SpeechRequest is the payload sent to a synthesis backend. It is
// constructed fresh per playback attempt and never persisted.
type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// Audio is a synthesized audio payload.
type Audio struct {
	Data     []byte
	MIMEType string
}

// EventType classifies audio lifecycle events emitted by a Player.
type EventType int

const (
	// EventReady indicates the audio is decoded and playback has begun.
	EventReady EventType = iota
	// EventEnded indicates playback reached its natural end.
	EventEnded
	// EventFailed indicates a runtime playback failure.
	EventFailed
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a single audio lifecycle notification. Events are delivered
// strictly in the order the playback primitive emits them.
type Event struct {
	Type EventType
	Err  error // set for EventFailed
}

// Player plays back one audio payload. A Player backs exactly one
// Session; a fresh Player is created per playback attempt.
type Player interface {
	// Play begins asynchronous playback of the given audio. Lifecycle
	// notifications are delivered on Events. A failure to decode or
	// start is returned synchronously instead.
	Play(audio *Audio) error

	// Pause suspends playback, retaining position.
	Pause() error

	// Resume continues playback from the paused position.
	Resume() error

	// Stop halts playback and releases the underlying audio resources.
	// Stop is idempotent. After Stop returns, the Events channel is
	// closed once the event goroutine drains.
	Stop() error

	// Events returns the lifecycle event stream. The channel is closed
	// when playback terminates for any reason.
	Events() <-chan Event
}

// PlayerFactory creates a fresh player for each audio session.
type PlayerFactory func() (Player, error)
