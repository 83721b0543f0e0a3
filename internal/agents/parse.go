package agents

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the first JSON object out of a model response,
// tolerating markdown code fences and surrounding prose.
func extractJSON(text string) (string, bool) {
	s := strings.TrimSpace(text)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// decodeResponse decodes the JSON object embedded in a model response
// into v. It returns a *ParseError naming the stage on any mismatch,
// letting the caller choose fallback or propagation.
func decodeResponse(stage, text string, v interface{}) *ParseError {
	raw, ok := extractJSON(text)
	if !ok {
		return &ParseError{Stage: stage, Reason: "no JSON object in response", Raw: text}
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return &ParseError{Stage: stage, Reason: err.Error(), Raw: text}
	}
	return nil
}
