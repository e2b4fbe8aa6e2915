package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Controller is the text-to-speech playback state machine. It owns the
// single live audio session, issues at most one synthesis request at a
// time, and drives status transitions from user actions and audio
// lifecycle events.
//
// The session handle is private and mutated only through the
// controller's transition paths, which structurally enforces the
// at-most-one-session invariant.
type Controller struct {
	mu sync.Mutex

	synth      Synthesizer
	players    PlayerFactory
	normalizer *Normalizer

	machine  *Machine
	progress string
	lastErr  error

	text         string
	voice        VoiceProfile
	markdownMode bool
	streaming    bool

	session    *Session
	audioBytes int

	// gen tags each playback attempt. Synthesis responses and player
	// events carrying a stale gen are discarded: a request cannot be
	// aborted once sent, only its effect.
	gen uint64

	resetTimer *time.Timer
	resetDelay time.Duration
	timeout    time.Duration

	onStatus  func(Status)
	onRelease func()

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewController creates a playback controller using the given synthesis
// backend and player factory. The config's voice must exist in the
// catalog; Validate it first.
func NewController(synth Synthesizer, players PlayerFactory, cfg Config) *Controller {
	voice, ok := FindVoice(cfg.Voice)
	if !ok {
		voice = DefaultVoice()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		synth:        synth,
		players:      players,
		normalizer:   NewNormalizer(),
		machine:      NewMachine(),
		voice:        voice,
		markdownMode: cfg.MarkdownMode,
		resetDelay:   cfg.ErrorResetDelay,
		timeout:      cfg.RequestTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Status returns the current playback status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// ProgressMessage returns the message shown while generating, loading
// or in the error state. Empty otherwise.
func (c *Controller) ProgressMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// LastError returns the error behind the most recent StatusError.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// AudioBytes returns the size of the most recently synthesized payload.
func (c *Controller) AudioBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audioBytes
}

// Voice returns the selected voice.
func (c *Controller) Voice() VoiceProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// SetVoice selects the voice used for the next synthesis request. A
// session already playing keeps its voice.
func (c *Controller) SetVoice(v VoiceProfile) error {
	if _, ok := FindVoice(v.ID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVoice, v.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = v
	return nil
}

// SetText replaces the source text spoken by the next request.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

// SetMarkdownMode toggles normalization of markdown before synthesis.
func (c *Controller) SetMarkdownMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markdownMode = on
}

// SetStreaming sets the external suppression flag: while upstream text
// is still being generated, speak requests are ignored.
func (c *Controller) SetStreaming(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streaming = on
}

// OnStatusChange registers a callback invoked on every status change.
// The callback runs with the controller lock held and must not call
// back into the controller.
func (c *Controller) OnStatusChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// OnSessionRelease registers a hook fired each time an audio session's
// backing resources are released.
func (c *Controller) OnSessionRelease(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRelease = fn
}

// Transcript returns the text as it would be sent to the synthesis
// backend, normalized and truncated.
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, _ := Truncate(c.speakableLocked())
	return text
}

// Speak toggles playback. From idle or error it starts a fresh
// synthesis request; while playing it pauses; while paused it resumes;
// while a request is in flight it does nothing, so duplicate requests
// cannot be issued.
func (c *Controller) Speak() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}

	switch c.machine.Current() {
	case StatusPlaying:
		if err := c.session.Player().Pause(); err != nil {
			return c.failLocked(fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
		}
		c.transitionLocked(StatusPaused)
		return nil

	case StatusPaused:
		if err := c.session.Player().Resume(); err != nil {
			return c.failLocked(fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
		}
		c.transitionLocked(StatusPlaying)
		return nil

	case StatusGenerating, StatusLoading:
		// Request already in flight.
		return nil
	}

	if c.streaming {
		return nil
	}

	text := c.speakableLocked()
	if text == "" {
		// Zero-length text is a no-op, not an error state.
		return nil
	}

	text, cut := Truncate(text)
	if cut {
		log.Debug("text truncated to synthesis limit", "limit", MaxTextLength)
	}

	c.cancelResetLocked()
	c.transitionLocked(StatusGenerating)
	c.progress = "Generating audio..."
	c.lastErr = nil

	c.gen++
	go c.generate(c.gen, SpeechRequest{Text: text, VoiceID: c.voice.ID})
	return nil
}

// Stop ends playback and releases the audio session. It acts only while
// a session is audible; a request in flight cannot be stopped, only
// ignored once it lands.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.Current().IsAudible() {
		return nil
	}

	c.gen++ // orphan the event watcher
	c.releaseSessionLocked()
	c.transitionLocked(StatusIdle)
	c.progress = ""
	return nil
}

// Close tears the controller down from any state: the live session is
// released, the in-flight request context is canceled and the pending
// error reset, if any, is dropped. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.cancel()
	c.gen++
	c.cancelResetLocked()
	c.releaseSessionLocked()
	c.machine.Force(StatusIdle)
	c.progress = ""
	c.notifyLocked()
	return nil
}

// generate performs one synthesis attempt off the caller's goroutine.
func (c *Controller) generate(gen uint64, req SpeechRequest) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	start := time.Now()
	audio, err := c.synth.Synthesize(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.machine.Current() != StatusGenerating {
		// A newer attempt or teardown overtook this response.
		log.Debug("discarding stale synthesis response", "backend", c.synth.Name())
		return
	}

	if err != nil {
		c.failLocked(err)
		return
	}

	log.Debug("synthesis complete",
		"backend", c.synth.Name(),
		"size", humanize.Bytes(uint64(len(audio.Data))),
		"elapsed", time.Since(start))

	player, err := c.players()
	if err != nil {
		c.failLocked(fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
		return
	}

	c.session = NewSession(player, c.onRelease)
	c.audioBytes = len(audio.Data)
	c.transitionLocked(StatusLoading)
	c.progress = "Loading audio..."

	if err := player.Play(audio); err != nil {
		c.releaseSessionLocked()
		c.failLocked(fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
		return
	}

	go c.watch(gen, player.Events())
}

// watch consumes one session's lifecycle events in emission order.
func (c *Controller) watch(gen uint64, events <-chan Event) {
	for ev := range events {
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}

		switch ev.Type {
		case EventReady:
			if c.machine.Current() == StatusLoading {
				c.transitionLocked(StatusPlaying)
				c.progress = ""
			}

		case EventEnded:
			if c.machine.Current().IsAudible() {
				c.releaseSessionLocked()
				c.transitionLocked(StatusIdle)
				c.progress = ""
			}
			c.mu.Unlock()
			return

		case EventFailed:
			c.releaseSessionLocked()
			c.failLocked(fmt.Errorf("%w: %v", ErrPlaybackFailed, ev.Err))
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// speakableLocked returns the current text in speakable form.
func (c *Controller) speakableLocked() string {
	if c.markdownMode {
		return c.normalizer.Flatten(c.text)
	}
	return strings.TrimSpace(c.text)
}

// failLocked moves to the error state and arms the auto-reset. The
// reset is a cancellable delayed task: a speak during the error window
// cancels it rather than racing it.
func (c *Controller) failLocked(err error) error {
	c.releaseSessionLocked()
	c.cancelResetLocked()

	c.lastErr = err
	c.progress = UserMessage(err)
	if !c.machine.Transition(StatusError) {
		c.machine.Force(StatusError)
	}
	c.notifyLocked()
	log.Warn("speech attempt failed", "err", err)

	c.resetTimer = time.AfterFunc(c.resetDelay, c.resetFromError)
	return err
}

// resetFromError returns the controller to idle after the error window.
func (c *Controller) resetFromError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Current() != StatusError {
		return
	}
	c.transitionLocked(StatusIdle)
	c.progress = ""
}

func (c *Controller) cancelResetLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

// releaseSessionLocked releases the live session, if any. Safe to call
// on every end-of-life path; the session guarantees a single release.
func (c *Controller) releaseSessionLocked() {
	if c.session != nil {
		c.session.Release()
		c.session = nil
	}
}

func (c *Controller) transitionLocked(to Status) {
	if !c.machine.Transition(to) {
		log.Warn("invalid status transition", "from", c.machine.Current(), "to", to)
		return
	}
	c.notifyLocked()
}

func (c *Controller) notifyLocked() {
	if c.onStatus != nil {
		c.onStatus(c.machine.Current())
	}
}
