package llm

import (
	"encoding/json"
	"strings"

	"github.com/isaacchin12/c8-techJam/model"
)

// ParseAnswer turns a raw model response into a StructuredAnswer. It climbs
// a ladder of progressively more forgiving strategies:
//
//  1. parse the response as strict JSON
//  2. parse the widest {...} substring, stripping markdown fences
//  3. parse that substring after removing comments and trailing commas
//
// If every rung fails the raw text is preserved as the reasoning of a
// single unscored finding, so a malformed response is degraded, never lost.
// The second return value reports whether any rung parsed.
func ParseAnswer(raw string) (*model.StructuredAnswer, bool) {
	trimmed := strings.TrimSpace(raw)

	if answer, ok := tryUnmarshal(trimmed); ok {
		return answer, true
	}

	extracted := extractJSONObject(trimmed)
	if extracted != "" {
		if answer, ok := tryUnmarshal(extracted); ok {
			return answer, true
		}

		if answer, ok := tryUnmarshal(cleanJSON(extracted)); ok {
			return answer, true
		}
	}

	return BestEffortAnswer(raw), false
}

// BestEffortAnswer wraps an unparseable response so the caller still sees
// what the model said
func BestEffortAnswer(raw string) *model.StructuredAnswer {
	return &model.StructuredAnswer{
		Results: []model.LawFinding{
			{Reasoning: raw},
		},
	}
}

func tryUnmarshal(candidate string) (*model.StructuredAnswer, bool) {
	if candidate == "" {
		return nil, false
	}

	answer := &model.StructuredAnswer{}
	err := json.Unmarshal([]byte(candidate), answer)
	if err != nil {
		return nil, false
	}
	return answer, true
}
