package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON decodes a model completion into v, tolerating models that
// wrap the JSON in prose or markdown fences. Strategy: direct parse
// first, then the greedy substring from the first "{" to the last "}".
// Retry policy is the caller's concern; there is none here.
func ExtractJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ErrNoModelResponse
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), v); err == nil {
			return nil
		}
	}

	return &UnparsableResponseError{Raw: raw}
}
