package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a completion holds no {...} span.
var ErrNoJSONObject = errors.New("ai: no JSON object in completion")

// ExtractJSON returns the span from the first '{' to the last '}', which
// drops code fences and chatter around a JSON reply.
func ExtractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return content[start : end+1], nil
}

// DecodeJSON extracts and unmarshals a JSON object from a completion.
func DecodeJSON(content string, target any) error {
	raw, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), target)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
