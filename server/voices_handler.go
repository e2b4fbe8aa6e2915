package server

import (
	"encoding/json"
	"net/http"

	"github.com/ftjoosen-hub/speakgpt/speech"
	"github.com/ftjoosen-hub/speakgpt/speech/synth"
)

// handleVoices serves the static voice catalog together with the text
// length cap, so clients never hardcode either.
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(synth.VoicesResponse{
		Voices:        speech.Voices(),
		MaxTextLength: speech.MaxTextLength,
	})
}
