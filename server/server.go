// Package server implements the synthesis relay: an HTTP service that
// holds the upstream API credentials and exposes a minimal speech API
// to clients, so keys never reach the client side.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// Config contains relay server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"SPEAKGPT_SERVER_ADDR" envDefault:":8585"`

	// OpenAIKey authenticates upstream synthesis calls. When empty the
	// relay responds with a configuration error instead of failing at
	// startup.
	OpenAIKey string `env:"OPENAI_API_KEY"`

	// Model selects the upstream synthesis model.
	Model string `env:"SPEAKGPT_MODEL" envDefault:"tts-1"`

	// RatePerMinute caps synthesis requests across all clients.
	RatePerMinute int `env:"SPEAKGPT_RATE_PER_MINUTE" envDefault:"30"`

	// RequestTimeout bounds one upstream synthesis call.
	RequestTimeout time.Duration `env:"SPEAKGPT_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Server is the relay HTTP server.
type Server struct {
	cfg     Config
	synth   speech.Synthesizer
	limiter *rate.Limiter
	mux     *http.ServeMux
	httpSrv *http.Server
}

// New creates a relay server around the given synthesis backend.
func New(cfg Config, synth speech.Synthesizer) *Server {
	s := &Server{
		cfg:     cfg,
		synth:   synth,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute),
		mux:     http.NewServeMux(),
	}

	s.mux.Handle("POST /api/speech", s.withRequestLog(http.HandlerFunc(s.handleSpeech)))
	s.mux.Handle("GET /api/voices", gzhttp.GzipHandler(s.withRequestLog(http.HandlerFunc(s.handleVoices))))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("relay server listening", "addr", s.cfg.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("relay server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("relay server shutting down")
	return s.httpSrv.Shutdown(shutdownCtx)
}

// withRequestLog tags each request with an ID and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(rec, r)

		log.Info("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","service":"speakgpt-relay"}`)
}
