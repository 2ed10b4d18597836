package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alphagen/alphagen/internal/contracts"
)

const summaryLimit = 100

// rawReply uses pointers so a missing field is distinguishable from an
// explicit zero.
type rawReply struct {
	SentimentScore *float64 `json:"sentiment_score"`
	Confidence     *float64 `json:"confidence"`
	Relevance      *float64 `json:"relevance"`
	Themes         []string `json:"themes"`
	Summary        *string  `json:"summary"`
}

// parseReply validates a raw model reply into a SentimentReply. Any
// structural problem is ErrOracleMalformed; out-of-range numbers are
// clamped rather than rejected.
func parseReply(text string) (*contracts.SentimentReply, error) {
	cleaned := stripCodeFence(text)

	var raw rawReply
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("decode reply: %v: %w", err, contracts.ErrOracleMalformed)
	}

	if raw.SentimentScore == nil || raw.Confidence == nil || raw.Relevance == nil || raw.Summary == nil {
		return nil, fmt.Errorf("reply missing required fields: %w", contracts.ErrOracleMalformed)
	}

	summary := *raw.Summary
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}

	themes := make([]string, 0, len(raw.Themes))
	for _, t := range raw.Themes {
		t = strings.TrimSpace(t)
		if t != "" {
			themes = append(themes, t)
		}
	}

	return &contracts.SentimentReply{
		SentimentScore: clamp(*raw.SentimentScore, -1, 1),
		Confidence:     clamp(*raw.Confidence, 0, 1),
		Relevance:      clamp(*raw.Relevance, 0, 1),
		Themes:         themes,
		Summary:        summary,
	}, nil
}

// stripCodeFence removes markdown fencing the model sometimes wraps
// around its JSON.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
