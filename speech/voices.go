package speech

import "github.com/sahilm/fuzzy"

// MaxTextLength is the synthesis provider's hard per-request character
// limit. Longer text is truncated, not rejected.
const MaxTextLength = 4096

// TruncationMarker is appended to text cut at the provider's limit.
const TruncationMarker = "..."

// VoiceProfile is a named synthesis voice presented to the user.
type VoiceProfile struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Voices is the static catalog of synthesis voices. The catalog is
// immutable; the selected entry is held as controller configuration.
func Voices() []VoiceProfile {
	return []VoiceProfile{
		{ID: "alloy", Label: "Alloy (neutral)"},
		{ID: "echo", Label: "Echo (male)"},
		{ID: "fable", Label: "Fable (British)"},
		{ID: "onyx", Label: "Onyx (deep)"},
		{ID: "nova", Label: "Nova (female)"},
		{ID: "shimmer", Label: "Shimmer (soft)"},
	}
}

// DefaultVoice returns the catalog's first entry.
func DefaultVoice() VoiceProfile {
	return Voices()[0]
}

// FindVoice looks up a voice by exact ID.
func FindVoice(id string) (VoiceProfile, bool) {
	for _, v := range Voices() {
		if v.ID == id {
			return v, true
		}
	}
	return VoiceProfile{}, false
}

// MatchVoice resolves a user-supplied voice name, trying an exact ID
// match first and falling back to a fuzzy match against IDs and labels.
func MatchVoice(query string) (VoiceProfile, bool) {
	if v, ok := FindVoice(query); ok {
		return v, true
	}

	catalog := Voices()
	names := make([]string, 0, len(catalog)*2)
	for _, v := range catalog {
		names = append(names, v.ID, v.Label)
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return VoiceProfile{}, false
	}
	return catalog[matches[0].Index/2], true
}
