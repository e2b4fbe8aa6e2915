package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "tts-1"
)

// openAIRequest is the upstream speech endpoint payload.
type openAIRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

// OpenAIClient synthesizes speech directly against the OpenAI audio
// API. It is used by the relay server and by direct mode, where the
// user supplies their own key.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIOption adjusts an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel selects the synthesis model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// NewOpenAIClient creates a client with the given API key. An empty key
// is allowed at construction; synthesis then fails with
// ErrUpstreamUnavailable.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		model:   defaultOpenAIModel,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool {
	return c.apiKey != ""
}

// Synthesize performs one upstream synthesis call and returns MP3 audio.
func (c *OpenAIClient) Synthesize(ctx context.Context, req speech.SpeechRequest) (*speech.Audio, error) {
	if !c.Configured() {
		return nil, speech.ErrUpstreamUnavailable
	}

	body, err := json.Marshal(openAIRequest{
		Model:          c.model,
		Input:          req.Text,
		Voice:          req.VoiceID,
		ResponseFormat: "mp3",
		Speed:          1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", speech.ErrSynthesisFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Debug("upstream synthesis rejected", "status", resp.StatusCode, "body", string(detail))
		return nil, fmt.Errorf("%w: upstream status %d", speech.FromStatusCode(resp.StatusCode), resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", speech.ErrSynthesisFailed, err)
	}
	return &speech.Audio{Data: data, MIMEType: "audio/mpeg"}, nil
}

// Name identifies the backend.
func (c *OpenAIClient) Name() string {
	return "openai"
}
