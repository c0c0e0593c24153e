package plan

import (
	"encoding/json"
	"strings"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
)

// ExtractJSON pulls the JSON document out of a generation-service response.
// Models wrap their output in markdown fences or surrounding prose often
// enough that a plain unmarshal is not an option.
func ExtractJSON(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, apperrors.ErrMalformedResponse
	}

	s = stripFences(s)

	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	// Fall back to the outermost array or object inside the text.
	for _, pair := range [][2]rune{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexRune(s, pair[0])
		end := strings.LastIndex(s, string(pair[1]))
		if start >= 0 && end > start {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return []byte(candidate), nil
			}
		}
	}

	return nil, apperrors.ErrMalformedResponse
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence.
	if idx := strings.Index(s, "\n"); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
