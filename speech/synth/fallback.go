package synth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// Fallback wraps a primary synthesis backend with automatic failover to
// a secondary one when the primary fails consistently. Input errors
// (rate limits, bad requests from the caller's side) do not count
// toward failover; only availability failures do.
type Fallback struct {
	mu sync.Mutex

	primary   speech.Synthesizer
	secondary speech.Synthesizer

	failures      int
	maxFailures   int
	usingFallback bool
}

// NewFallback creates a failover synthesizer. After maxFailures
// consecutive primary failures, requests go to the secondary backend.
func NewFallback(primary, secondary speech.Synthesizer, maxFailures int) *Fallback {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Fallback{
		primary:     primary,
		secondary:   secondary,
		maxFailures: maxFailures,
	}
}

// Synthesize routes the request to the active backend.
func (f *Fallback) Synthesize(ctx context.Context, req speech.SpeechRequest) (*speech.Audio, error) {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()

	if usingFallback {
		return f.secondary.Synthesize(ctx, req)
	}

	audio, err := f.primary.Synthesize(ctx, req)
	if err == nil {
		f.recover()
		return audio, nil
	}

	// The caller caused this one; switching backends would not help.
	if errors.Is(err, speech.ErrRateLimited) || errors.Is(err, context.Canceled) {
		return nil, err
	}

	if !f.recordFailure() {
		return nil, err
	}

	log.Warn("switching to fallback synthesis backend",
		"primary", f.primary.Name(),
		"fallback", f.secondary.Name(),
		"err", err)

	audio, ferr := f.secondary.Synthesize(ctx, req)
	if ferr != nil {
		return nil, fmt.Errorf("both backends failed: primary=%v, fallback=%w", err, ferr)
	}
	return audio, nil
}

// Name identifies the active backend.
func (f *Fallback) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.secondary.Name()
	}
	return f.primary.Name()
}

// Reset returns routing to the primary backend.
func (f *Fallback) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
}

// recover clears the failure streak after a primary success.
func (f *Fallback) recover() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		log.Info("primary synthesis backend recovered", "after_failures", f.failures)
		f.failures = 0
	}
}

// recordFailure counts a primary failure and reports whether the
// failover threshold was just crossed.
func (f *Fallback) recordFailure() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
	if f.failures >= f.maxFailures {
		f.usingFallback = true
		return true
	}
	return false
}
