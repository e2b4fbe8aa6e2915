package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	speechRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speakgpt_speech_requests_total",
		Help: "Total number of synthesis requests by outcome",
	}, []string{"outcome"})

	speechLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "speakgpt_speech_latency_seconds",
		Help:    "Synthesis request latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	speechAudioBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speakgpt_speech_audio_bytes_total",
		Help: "Total synthesized audio bytes served",
	})
)

// Request outcomes for the speech counter.
const (
	outcomeSuccess     = "success"
	outcomeBadRequest  = "bad_request"
	outcomeRateLimited = "rate_limited"
	outcomeUpstream    = "upstream_error"
)
