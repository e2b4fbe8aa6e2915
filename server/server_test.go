package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ftjoosen-hub/speakgpt/speech"
	"github.com/ftjoosen-hub/speakgpt/speech/synth"
)

func testConfig() Config {
	return Config{
		Addr:           ":0",
		Model:          "tts-1",
		RatePerMinute:  60,
		RequestTimeout: 5 * time.Second,
	}
}

func speechRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/speech", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) synth.ErrorResponse {
	t.Helper()
	var body synth.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

// TestSpeechEndpoint tests the success path: audio bytes with accurate
// Content-Length.
func TestSpeechEndpoint(t *testing.T) {
	mock := synth.NewMock()
	payload := []byte("generated-mpeg-frames")
	mock.SetAudio(&speech.Audio{Data: payload, MIMEType: "audio/mpeg"})

	srv := New(testConfig(), mock)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, speechRequest(t, speech.SpeechRequest{Text: "hello", VoiceID: "alloy"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != strconv.Itoa(len(payload)) {
		t.Errorf("Content-Length = %q, want %d", got, len(payload))
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Error("audio body mismatch")
	}
	if req := mock.LastRequest(); req.Text != "hello" || req.VoiceID != "alloy" {
		t.Errorf("backend saw request %+v", req)
	}
}

// TestSpeechValidation tests the 400 responses.
func TestSpeechValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"empty text", speech.SpeechRequest{Text: "", VoiceID: "alloy"}, "text is required"},
		{
			"text too long",
			speech.SpeechRequest{Text: strings.Repeat("a", speech.MaxTextLength+1), VoiceID: "alloy"},
			"text exceeds maximum length",
		},
		{"unknown voice", speech.SpeechRequest{Text: "hi", VoiceID: "hal9000"}, "unknown voice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := synth.NewMock()
			srv := New(testConfig(), mock)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, speechRequest(t, tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body := decodeError(t, rec); !strings.Contains(body.Error, tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", body.Error, tt.wantMsg)
			}
			if mock.CallCount() != 0 {
				t.Error("invalid request reached the backend")
			}
		})
	}
}

// TestSpeechMalformedBody tests rejection of non-JSON input.
func TestSpeechMalformedBody(t *testing.T) {
	srv := New(testConfig(), synth.NewMock())

	req := httptest.NewRequest(http.MethodPost, "/api/speech", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSpeechRateLimit tests the request limiter.
func TestSpeechRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RatePerMinute = 1
	srv := New(cfg, synth.NewMock())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, speechRequest(t, speech.SpeechRequest{Text: "hi", VoiceID: "alloy"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, speechRequest(t, speech.SpeechRequest{Text: "hi", VoiceID: "alloy"}))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

// TestSpeechUpstreamErrors tests the error body contract for backend
// failures.
func TestSpeechUpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantDetails string
	}{
		{"unconfigured", speech.ErrUpstreamUnavailable, http.StatusInternalServerError, synth.DetailsConfiguration},
		{"upstream failure", speech.ErrSynthesisFailed, http.StatusInternalServerError, "upstream"},
		{"upstream rate limit", speech.ErrRateLimited, http.StatusTooManyRequests, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := synth.NewMock()
			mock.SetFailure(tt.err)
			srv := New(testConfig(), mock)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, speechRequest(t, speech.SpeechRequest{Text: "hi", VoiceID: "alloy"}))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeError(t, rec); body.Details != tt.wantDetails {
				t.Errorf("details = %q, want %q", body.Details, tt.wantDetails)
			}
		})
	}
}

// TestVoicesEndpoint tests the catalog payload.
func TestVoicesEndpoint(t *testing.T) {
	srv := New(testConfig(), synth.NewMock())

	req := httptest.NewRequest(http.MethodGet, "/api/voices", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body synth.VoicesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Voices) != len(speech.Voices()) {
		t.Errorf("got %d voices, want %d", len(body.Voices), len(speech.Voices()))
	}
	if body.MaxTextLength != speech.MaxTextLength {
		t.Errorf("maxTextLength = %d, want %d", body.MaxTextLength, speech.MaxTextLength)
	}
}

// TestHealthEndpoint tests the liveness probe.
func TestHealthEndpoint(t *testing.T) {
	srv := New(testConfig(), synth.NewMock())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

// TestMethodRouting tests that wrong methods are rejected by the mux.
func TestMethodRouting(t *testing.T) {
	srv := New(testConfig(), synth.NewMock())

	req := httptest.NewRequest(http.MethodGet, "/api/speech", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/speech status = %d, want 405", rec.Code)
	}
}
