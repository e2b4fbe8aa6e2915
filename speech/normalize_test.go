package speech

import (
	"strings"
	"testing"
)

// TestFlatten tests markdown stripping on representative chat replies.
func TestFlatten(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"plain text untouched",
			"Hello world",
			"Hello world",
		},
		{
			"heading and bold",
			"# Hello\n\nThis is **bold** text.",
			"Hello This is bold text.",
		},
		{
			"underscore strong and emphasis",
			"__really__ _important_",
			"really important",
		},
		{
			"inline code unwrapped",
			"run `go build` now",
			"run go build now",
		},
		{
			"fenced code replaced",
			"Before\n```go\nfunc main() {}\n```\nAfter",
			"Before [Code] After",
		},
		{
			"tilde fence replaced",
			"~~~\nraw\n~~~ done",
			"[Code] done",
		},
		{
			"link keeps label",
			"see [the docs](https://example.com) for more",
			"see the docs for more",
		},
		{
			"bullets become spoken dots",
			"- first\n- second\n* third",
			"• first • second • third",
		},
		{
			"numbered list markers dropped",
			"1. one\n2. two",
			"one two",
		},
		{
			"blockquote marker dropped",
			"> quoted line\nplain",
			"quoted line plain",
		},
		{
			"whitespace collapsed",
			"a\n\n\nb\t\tc",
			"a b c",
		},
		{
			"empty input",
			"",
			"",
		},
		{
			"only markup",
			"```\nx\n```",
			"[Code]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Flatten(tt.input); got != tt.expected {
				t.Errorf("Flatten(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFlattenIdempotent tests that a second pass is a no-op.
func TestFlattenIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"# Title\n\n**bold** and _soft_ with `code`",
		"- a\n- b\n\n> quote\n\n```\nblock\n```",
		"[label](http://x) plus plain text",
		"nothing special at all",
	}

	for _, input := range inputs {
		once := n.Flatten(input)
		twice := n.Flatten(once)
		if once != twice {
			t.Errorf("Flatten not idempotent on %q: %q != %q", input, once, twice)
		}
	}
}

// TestTruncate tests the synthesis length cap.
func TestTruncate(t *testing.T) {
	t.Run("short text passes through", func(t *testing.T) {
		got, cut := Truncate("hello")
		if got != "hello" || cut {
			t.Errorf("Truncate(short) = (%q, %v), want (hello, false)", got, cut)
		}
	})

	t.Run("exact limit passes through", func(t *testing.T) {
		text := strings.Repeat("a", MaxTextLength)
		got, cut := Truncate(text)
		if got != text || cut {
			t.Errorf("Truncate(limit) cut=%v len=%d, want uncut", cut, len(got))
		}
	})

	t.Run("long text is cut with marker", func(t *testing.T) {
		text := strings.Repeat("a", MaxTextLength+50)
		got, cut := Truncate(text)
		if !cut {
			t.Fatal("Truncate(long) reported no cut")
		}
		if !strings.HasSuffix(got, TruncationMarker) {
			t.Errorf("truncated text missing marker suffix")
		}
		wantLen := MaxTextLength + len([]rune(TruncationMarker))
		if gotLen := len([]rune(got)); gotLen != wantLen {
			t.Errorf("truncated length = %d runes, want %d", gotLen, wantLen)
		}
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		text := strings.Repeat("é", MaxTextLength)
		got, cut := Truncate(text)
		if cut {
			t.Errorf("multibyte text at rune limit was cut")
		}
		if got != text {
			t.Errorf("multibyte text mangled")
		}
	})
}
