package urgency

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawVerdict is the reply shape expected from the inference capability.
type rawVerdict struct {
	Urgent     bool    `json:"urgent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseVerdict extracts the structured verdict from a model reply. Models
// wrap JSON in markdown fences or chatter around it often enough that the
// parser just hunts for the outermost object. Confidence is clamped to
// [0, 1].
func ParseVerdict(reply string) (bool, float64, string, error) {
	payload := extractJSON(reply)
	if payload == "" {
		return false, 0, "", fmt.Errorf("no JSON object in reply")
	}

	var v rawVerdict
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return false, 0, "", fmt.Errorf("malformed verdict: %w", err)
	}

	return v.Urgent, clamp01(v.Confidence), v.Reasoning, nil
}

func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
