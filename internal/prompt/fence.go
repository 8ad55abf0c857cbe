package prompt

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a whole-string triple-backtick code block with an
// optional "json" tag.
var fencePattern = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// StripFence returns the interior of a fenced code block when the trimmed
// input is entirely one, otherwise the trimmed input itself.
func StripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// ParseJSON fence-strips raw and attempts to parse it as JSON. The boolean
// result distinguishes structured output from prose; a parse failure is the
// documented raw-text fallback, not an error.
func ParseJSON(raw string) (json.RawMessage, bool) {
	normalized := StripFence(raw)
	if !json.Valid([]byte(normalized)) {
		return nil, false
	}
	return json.RawMessage(normalized), true
}
