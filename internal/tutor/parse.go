package tutor

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/geulmoi/geulssaem/internal/model"
)

// parseEvaluation extracts score and feedback from a normalized model reply.
// An empty reason means success; otherwise the reason names which validation
// step rejected the reply. The returned score is already clamped to [0, 100].
func parseEvaluation(text string) (int, string, model.FallbackReason) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return 0, "", model.FallbackUnparseable
	}

	scoreRaw, ok := payload["score"]
	if !ok {
		return 0, "", model.FallbackMissingKey
	}
	feedbackRaw, ok := payload["feedback"]
	if !ok {
		return 0, "", model.FallbackMissingKey
	}

	score, ok := convertScore(scoreRaw)
	if !ok {
		return 0, "", model.FallbackBadScore
	}

	return clampScore(score), convertFeedback(feedbackRaw), ""
}

// convertScore accepts a JSON number (truncated toward zero) or a string
// holding an integer. Anything else fails conversion. null needs the
// explicit check: encoding/json unmarshals it into a float64 as a no-op.
func convertScore(raw json.RawMessage) (int, bool) {
	if isJSONNull(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Trunc(f)), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	}

	return 0, false
}

// convertFeedback returns the feedback string, or the raw JSON text when the
// value is not a string. The model occasionally nests objects here; showing
// the raw value beats dropping the whole reply.
func convertFeedback(raw json.RawMessage) string {
	if isJSONNull(raw) {
		return string(raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// clampScore forces a score into the 0-100 range.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
