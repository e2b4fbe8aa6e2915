package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// mutedColor adapts the secondary text color to the terminal
// background.
func mutedColor() lipgloss.Color {
	if termenv.HasDarkBackground() {
		return lipgloss.Color("#888888")
	}
	return lipgloss.Color("#777777")
}

// StatusDisplay renders playback state for the status bar.
type StatusDisplay struct {
	status     speech.Status
	voice      speech.VoiceProfile
	progress   string
	audioBytes int
}

// NewStatusDisplay creates a status display in the idle state.
func NewStatusDisplay(voice speech.VoiceProfile) *StatusDisplay {
	return &StatusDisplay{status: speech.StatusIdle, voice: voice}
}

// Update refreshes the display from the controller's observable state.
func (s *StatusDisplay) Update(status speech.Status, progress string, audioBytes int) {
	s.status = status
	s.progress = progress
	s.audioBytes = audioBytes
}

// SetVoice updates the displayed voice.
func (s *StatusDisplay) SetVoice(voice speech.VoiceProfile) {
	s.voice = voice
}

// CompactStatus returns a one-segment status string for the status bar.
// Empty while idle so the bar stays clean.
func (s *StatusDisplay) CompactStatus() string {
	if s.status == speech.StatusIdle {
		return ""
	}

	style := lipgloss.NewStyle().Foreground(s.statusColor())
	out := style.Render(fmt.Sprintf("%s %s", s.statusIcon(), strings.ToUpper(s.status.String())))

	if s.status.IsAudible() && s.audioBytes > 0 {
		sizeStyle := lipgloss.NewStyle().Foreground(mutedColor())
		out += sizeStyle.Render(" " + humanize.Bytes(uint64(s.audioBytes)))
	}
	return out
}

// BarLine renders the full status line: playback state, voice label and
// the progress or error message, truncated to width.
func (s *StatusDisplay) BarLine(width int) string {
	voiceStyle := lipgloss.NewStyle().Foreground(mutedColor())
	segments := []string{voiceStyle.Render("voice: " + s.voice.Label)}

	if compact := s.CompactStatus(); compact != "" {
		segments = append(segments, compact)
	}

	if s.progress != "" {
		msgStyle := lipgloss.NewStyle().Foreground(s.statusColor())
		segments = append(segments, msgStyle.Render(s.progress))
	}

	line := strings.Join(segments, "  ")
	if width > 4 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}
	return line
}

func (s *StatusDisplay) statusColor() lipgloss.Color {
	switch s.status {
	case speech.StatusGenerating, speech.StatusLoading:
		return lipgloss.Color("#00AAFF")
	case speech.StatusPlaying:
		return lipgloss.Color("#00FF00")
	case speech.StatusPaused:
		return lipgloss.Color("#FFFF00")
	case speech.StatusError:
		return lipgloss.Color("#FF0000")
	default:
		return lipgloss.Color("#666666")
	}
}

func (s *StatusDisplay) statusIcon() string {
	switch s.status {
	case speech.StatusGenerating, speech.StatusLoading:
		return "⟳"
	case speech.StatusPlaying:
		return "▶"
	case speech.StatusPaused:
		return "⏸"
	case speech.StatusError:
		return "✗"
	default:
		return "○"
	}
}
