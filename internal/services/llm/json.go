package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a model reply into dest. Markdown code fences and any
// prose around the first JSON value are ignored.
func DecodeJSON(reply string, dest interface{}) error {
	body := ExtractJSON(reply)
	if body == "" {
		return fmt.Errorf("no json in reply")
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// ExtractJSON returns the first complete object or array in s. Text after
// that value is ignored, braces included.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	for offset := 0; offset < len(s); {
		i := strings.IndexAny(s[offset:], "{[")
		if i < 0 {
			return ""
		}
		start := offset + i
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&raw); err == nil {
			return string(raw)
		}
		offset = start + 1
	}
	return ""
}
