package speech

import (
	"regexp"
	"strings"
)

// Normalizer converts rich markdown text into flat speakable text. It is
// a total function over all strings, and idempotent: normalizing twice
// equals normalizing once.
type Normalizer struct {
	codeBlock  *regexp.Regexp
	heading    *regexp.Regexp
	strong     *regexp.Regexp
	emphasis   *regexp.Regexp
	inlineCode *regexp.Regexp
	link       *regexp.Regexp
	bullet     *regexp.Regexp
	numbered   *regexp.Regexp
	blockquote *regexp.Regexp
	newlines   *regexp.Regexp
	spaces     *regexp.Regexp
}

// CodePlaceholder replaces fenced code blocks wholesale; reading code
// aloud character by character is useless.
const CodePlaceholder = "[Code]"

// NewNormalizer compiles the markdown stripping patterns.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		codeBlock:  regexp.MustCompile("(?s)```.*?```|~~~.*?~~~"),
		heading:    regexp.MustCompile(`(?m)^#{1,6}\s+`),
		strong:     regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`),
		emphasis:   regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`),
		inlineCode: regexp.MustCompile("`([^`]+)`"),
		link:       regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`),
		bullet:     regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`),
		numbered:   regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`),
		blockquote: regexp.MustCompile(`(?m)^[ \t]*>+[ \t]*`),
		newlines:   regexp.MustCompile(`\n{2,}`),
		spaces:     regexp.MustCompile(`\s+`),
	}
}

// Flatten strips markdown control sequences, keeping literal and inner
// content, and collapses whitespace to single spaces.
func (n *Normalizer) Flatten(markdown string) string {
	text := n.codeBlock.ReplaceAllString(markdown, " "+CodePlaceholder+" ")

	// Line-level markers first, so list asterisks are consumed before
	// the emphasis pass.
	text = n.heading.ReplaceAllString(text, "")
	text = n.bullet.ReplaceAllString(text, "• ")
	text = n.numbered.ReplaceAllString(text, "")
	text = n.blockquote.ReplaceAllString(text, "")

	text = n.link.ReplaceAllString(text, "$1")
	text = n.strong.ReplaceAllString(text, "$1$2")
	text = n.emphasis.ReplaceAllString(text, "$1$2")
	text = n.inlineCode.ReplaceAllString(text, "$1")

	text = n.newlines.ReplaceAllString(text, " ")
	text = n.spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate enforces the provider's hard character limit: text longer
// than MaxTextLength runes is cut at the limit and the truncation marker
// is appended. It reports whether the text was cut.
func Truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text, false
	}
	return string(runes[:MaxTextLength]) + TruncationMarker, true
}
