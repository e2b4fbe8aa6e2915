// Package audio provides audio playback for synthesized speech: an MP3
// player backed by the system audio device, and a mock for tests.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// The audio device context is process-global and created once, at the
// sample rate of the first stream. MP3 decoding always yields 16-bit
// stereo, so only the rate varies.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func deviceContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Player plays one MP3 payload on the system audio device. It backs a
// single playback session; create a fresh Player per payload.
type Player struct {
	mu sync.Mutex

	player  *oto.Player
	events  chan speech.Event
	done    chan struct{}
	paused  bool
	started bool
	stopped bool

	closeEvents sync.Once
}

// NewPlayer creates an idle player. Matches speech.PlayerFactory.
func NewPlayer() (speech.Player, error) {
	return &Player{
		events: make(chan speech.Event, 8),
		done:   make(chan struct{}),
	}, nil
}

// Play decodes the payload and starts asynchronous playback. Decode and
// device failures are returned synchronously; everything after that
// arrives on Events.
func (p *Player) Play(audio *speech.Audio) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("player already used")
	}
	if p.stopped {
		return errors.New("player is stopped")
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(audio.Data))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}

	ctx, err := deviceContext(decoder.SampleRate())
	if err != nil {
		return err
	}

	p.player = ctx.NewPlayer(decoder)
	p.player.Play()
	p.started = true

	log.Debug("playback started", "sample_rate", decoder.SampleRate(), "bytes", len(audio.Data))
	go p.watch()
	return nil
}

// Pause suspends playback, retaining position.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return errors.New("not playing")
	}
	p.player.Pause()
	p.paused = true
	return nil
}

// Resume continues playback from the paused position.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return errors.New("not playing")
	}
	p.player.Play()
	p.paused = false
	return nil
}

// Stop halts playback and releases the device handle. Idempotent.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.done)

	if p.player != nil {
		if err := p.player.Close(); err != nil {
			log.Debug("closing audio player", "err", err)
		}
		p.player = nil
	}

	// No watch goroutine runs when Play never started; close the
	// stream here so a listener cannot hang.
	if !p.started {
		p.closeEvents.Do(func() { close(p.events) })
	}
	return nil
}

// Events returns the lifecycle event stream.
func (p *Player) Events() <-chan speech.Event {
	return p.events
}

// watch emits EventReady, then polls the device until the stream drains
// or fails. It is the only sender on events and closes the channel on
// exit.
func (p *Player) watch() {
	defer p.closeEvents.Do(func() { close(p.events) })

	p.events <- speech.Event{Type: speech.EventReady}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			ev, terminal := p.poll()
			if !terminal {
				continue
			}
			select {
			case p.events <- ev:
			case <-p.done:
			}
			return
		}
	}
}

// poll inspects the device player and reports a terminal event once the
// stream has ended or failed.
func (p *Player) poll() (speech.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.player == nil {
		return speech.Event{}, false
	}
	if p.paused || p.player.IsPlaying() {
		return speech.Event{}, false
	}

	if err := p.player.Err(); err != nil {
		return speech.Event{Type: speech.EventFailed, Err: err}, true
	}
	return speech.Event{Type: speech.EventEnded}, true
}
