// Package utils provides small helpers shared by the CLI layers.
package utils

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading tilde to the user's home directory.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return s
}

// RemoveFrontmatter strips a leading YAML frontmatter block, if any.
func RemoveFrontmatter(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return content
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return content
	}

	rest = rest[end+len("\n---"):]
	if idx := bytes.IndexByte(rest, '\n'); idx >= 0 {
		return rest[idx+1:]
	}
	return nil
}

// IsMarkdownFile reports whether the path looks like a markdown
// document. Extensionless sources (stdin, URLs without a path) count as
// markdown.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".md", ".mdown", ".mkdn", ".mkd", ".markdown":
		return true
	default:
		return false
	}
}
