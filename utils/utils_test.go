package utils

import "testing"

// TestRemoveFrontmatter tests YAML frontmatter stripping.
func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no frontmatter", "# Hello\n", "# Hello\n"},
		{"simple frontmatter", "---\ntitle: Test\n---\n# Hello\n", "# Hello\n"},
		{"unterminated frontmatter", "---\ntitle: Test\n# Hello\n", "---\ntitle: Test\n# Hello\n"},
		{"empty body", "---\ntitle: Test\n---\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RemoveFrontmatter([]byte(tt.input))); got != tt.expected {
				t.Errorf("RemoveFrontmatter(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestIsMarkdownFile tests extension detection.
func TestIsMarkdownFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"notes.markdown", true},
		{"stdin", true},
		{"main.go", false},
		{"archive.tar.gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMarkdownFile(tt.path); got != tt.want {
				t.Errorf("IsMarkdownFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
