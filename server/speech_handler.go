package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ftjoosen-hub/speakgpt/speech"
	"github.com/ftjoosen-hub/speakgpt/speech/synth"
)

// handleSpeech validates the request, synthesizes audio upstream and
// streams it back with an accurate Content-Length.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speech.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", "", outcomeBadRequest)
		return
	}

	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required", "", outcomeBadRequest)
		return
	}
	if length := len([]rune(req.Text)); length > speech.MaxTextLength {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("text exceeds maximum length of %d characters", speech.MaxTextLength), "", outcomeBadRequest)
		return
	}
	if _, ok := speech.FindVoice(req.VoiceID); !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown voice %q", req.VoiceID), "", outcomeBadRequest)
		return
	}

	if !s.limiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "", outcomeRateLimited)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	audio, err := s.synth.Synthesize(ctx, req)
	speechLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		s.writeSynthesisError(w, err)
		return
	}

	speechRequests.WithLabelValues(outcomeSuccess).Inc()
	speechAudioBytes.Add(float64(len(audio.Data)))

	w.Header().Set("Content-Type", audio.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio.Data); err != nil {
		log.Debug("writing audio response", "err", err)
	}
}

// writeSynthesisError maps backend errors onto the endpoint contract.
func (s *Server) writeSynthesisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, speech.ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, "upstream rate limit exceeded", "", outcomeRateLimited)
	case errors.Is(err, speech.ErrUpstreamUnavailable):
		s.writeError(w, http.StatusInternalServerError,
			"speech service is not configured", synth.DetailsConfiguration, outcomeUpstream)
	default:
		s.writeError(w, http.StatusInternalServerError, "audio generation failed", "upstream", outcomeUpstream)
	}
}

// writeError emits the JSON error body and records the outcome.
func (s *Server) writeError(w http.ResponseWriter, status int, msg, details, outcome string) {
	speechRequests.WithLabelValues(outcome).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(synth.ErrorResponse{Error: msg, Details: details})
}
