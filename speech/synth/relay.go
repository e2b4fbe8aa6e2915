// Package synth provides synthesis backends for the speech controller:
// the HTTP relay client, direct OpenAI and Google Cloud backends, a
// failover wrapper and a mock for tests.
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

// ErrorResponse is the JSON error body returned by the relay server.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// VoicesResponse is the relay's voice catalog payload.
type VoicesResponse struct {
	Voices        []speech.VoiceProfile `json:"voices"`
	MaxTextLength int                   `json:"maxTextLength"`
}

// DetailsConfiguration marks relay failures caused by missing upstream
// credentials, as opposed to upstream errors.
const DetailsConfiguration = "configuration"

// RelayClient synthesizes speech through the relay server, which holds
// the upstream credentials so the client never sees them.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

// NewRelayClient creates a client for the relay at baseURL. Request
// deadlines come from the caller's context.
func NewRelayClient(baseURL string) *RelayClient {
	return &RelayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Synthesize posts the request to the relay and returns the audio
// payload on success.
func (r *RelayClient) Synthesize(ctx context.Context, req speech.SpeechRequest) (*speech.Audio, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", speech.ErrSynthesisFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, r.decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", speech.ErrSynthesisFailed, err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	return &speech.Audio{Data: data, MIMEType: mime}, nil
}

// Name identifies the backend.
func (r *RelayClient) Name() string {
	return "relay"
}

// FetchVoices retrieves the relay's voice catalog.
func (r *RelayClient) FetchVoices(ctx context.Context) (*VoicesResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/voices", nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request failed: %s", resp.Status)
	}

	var voices VoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return &voices, nil
}

// decodeError maps a non-200 relay response onto the error taxonomy.
func (r *RelayClient) decodeError(resp *http.Response) error {
	var body ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		log.Debug("relay error body unreadable", "status", resp.StatusCode, "err", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", speech.ErrRateLimited, body.Error)
	case resp.StatusCode >= http.StatusInternalServerError && body.Details == DetailsConfiguration:
		return fmt.Errorf("%w: %s", speech.ErrUpstreamUnavailable, body.Error)
	default:
		if body.Error == "" {
			body.Error = resp.Status
		}
		return fmt.Errorf("%w: %s", speech.ErrSynthesisFailed, body.Error)
	}
}
