package synth

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// googleVoices maps catalog voice IDs onto Google Cloud voice names.
// Unmapped IDs fall back to the default entry.
var googleVoices = map[string]string{
	"alloy":   "en-US-Neural2-C",
	"echo":    "en-US-Neural2-D",
	"fable":   "en-GB-Neural2-B",
	"onyx":    "en-US-Neural2-J",
	"nova":    "en-US-Neural2-F",
	"shimmer": "en-US-Neural2-E",
}

// GoogleClient synthesizes speech through the Google Cloud
// Text-to-Speech API. Credentials come from the ambient application
// default credentials.
type GoogleClient struct {
	client *texttospeech.Client
}

// NewGoogleClient creates a Google Cloud synthesis backend.
func NewGoogleClient(ctx context.Context) (*GoogleClient, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrUpstreamUnavailable, err)
	}
	return &GoogleClient{client: client}, nil
}

// Synthesize performs one synthesis call and returns MP3 audio.
func (g *GoogleClient) Synthesize(ctx context.Context, req speech.SpeechRequest) (*speech.Audio, error) {
	name, ok := googleVoices[req.VoiceID]
	if !ok {
		name = googleVoices[speech.DefaultVoice().ID]
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err)
	}

	return &speech.Audio{Data: resp.AudioContent, MIMEType: "audio/mpeg"}, nil
}

// Name identifies the backend.
func (g *GoogleClient) Name() string {
	return "google"
}

// Close releases the underlying gRPC connection.
func (g *GoogleClient) Close() error {
	return g.client.Close()
}
