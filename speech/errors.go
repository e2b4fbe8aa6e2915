package speech

import (
	"errors"
	"net/http"
)

// Errors of the playback controller and its synthesis backends. All
// non-input errors converge to StatusError with a human-readable
// message and auto-recover to idle; none is fatal.
var (
	// ErrEmptyText signals a speak request with nothing to say. It is a
	// no-op at the controller level, never an error state.
	ErrEmptyText = errors.New("no text to speak")

	// ErrUnknownVoice signals a voice ID outside the catalog.
	ErrUnknownVoice = errors.New("unknown voice")

	// ErrUpstreamUnavailable signals missing credentials or
	// configuration on the relay side.
	ErrUpstreamUnavailable = errors.New("speech service is not configured")

	// ErrRateLimited signals exhausted upstream quota; the user should
	// retry later.
	ErrRateLimited = errors.New("speech service rate limit reached")

	// ErrSynthesisFailed signals a generic upstream or relay failure.
	ErrSynthesisFailed = errors.New("audio generation failed")

	// ErrPlaybackFailed signals a local failure to decode or start
	// playback.
	ErrPlaybackFailed = errors.New("audio playback failed")

	// ErrControllerClosed signals use after teardown.
	ErrControllerClosed = errors.New("speech controller is closed")
)

// UserMessage maps an error onto the message shown while StatusError is
// active.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Rate limit reached, please try again later"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "Speech service is not configured"
	case errors.Is(err, ErrPlaybackFailed):
		return "Could not play audio"
	default:
		return "Could not generate audio"
	}
}

// FromStatusCode maps an upstream HTTP status onto the error taxonomy.
func FromStatusCode(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUpstreamUnavailable
	default:
		return ErrSynthesisFailed
	}
}
