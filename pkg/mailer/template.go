package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---")

// Template is a markdown body with optional YAML frontmatter.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits "---\nyaml\n---\nbody". Content without an opening
// fence is all body.
func ParseTemplate(content []byte) (*Template, error) {
	if !bytes.HasPrefix(content, fence) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(content[len(fence):], "\r\n")
	end := bytes.Index(rest, fence)
	if end < 0 {
		return nil, fmt.Errorf("%w: closing fence not found", ErrInvalidFrontmatter)
	}

	meta := map[string]any{}
	if head := bytes.TrimSpace(rest[:end]); len(head) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(fence):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return &Template{Metadata: meta, Body: string(body)}, nil
}
