package speech

import (
	"fmt"
	"time"
)

// Config contains playback controller configuration.
type Config struct {
	// Voice is the selected synthesis voice ID.
	Voice string `yaml:"voice" env:"SPEAKGPT_VOICE" envDefault:"alloy"`

	// MarkdownMode runs text through the normalizer before synthesis.
	MarkdownMode bool `yaml:"markdown_mode" env:"SPEAKGPT_MARKDOWN_MODE" envDefault:"true"`

	// RequestTimeout bounds a single synthesis request.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SPEAKGPT_REQUEST_TIMEOUT" envDefault:"30s"`

	// ErrorResetDelay is how long StatusError is shown before the
	// controller automatically returns to idle.
	ErrorResetDelay time.Duration `yaml:"error_reset_delay" env:"SPEAKGPT_ERROR_RESET_DELAY" envDefault:"3s"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Voice:           DefaultVoice().ID,
		MarkdownMode:    true,
		RequestTimeout:  30 * time.Second,
		ErrorResetDelay: 3 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := FindVoice(c.Voice); !ok {
		ids := make([]string, 0, len(Voices()))
		for _, v := range Voices() {
			ids = append(ids, v.ID)
		}
		return fmt.Errorf("invalid voice %q: must be one of %v", c.Voice, ids)
	}

	if c.RequestTimeout < time.Second {
		return fmt.Errorf("request_timeout must be at least 1 second, got %v", c.RequestTimeout)
	}

	if c.ErrorResetDelay <= 0 {
		return fmt.Errorf("error_reset_delay must be positive, got %v", c.ErrorResetDelay)
	}

	return nil
}
