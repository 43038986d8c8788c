package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/word-dungeon/pkg/story"
)

var (
	ErrEmptyResponse     = errors.New("empty response")
	ErrMalformedResponse = errors.New("malformed response")
)

// ParseContent decodes a model reply into a chapter. Markdown code fences
// and any prose around the JSON object are stripped. The result is
// normalized; a reply with neither title nor story is malformed.
func ParseContent(raw string) (*story.GeneratedContent, error) {
	clean := stripFences(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}
	if start, end := strings.Index(clean, "{"), strings.LastIndex(clean, "}"); start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var content story.GeneratedContent
	if err := json.Unmarshal([]byte(clean), &content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	content.Normalize()
	if content.Title == "" && content.Story == "" {
		return nil, fmt.Errorf("%w: no title or story", ErrMalformedResponse)
	}
	return &content, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
