package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphagen/alphagen/internal/contracts"
)

func TestParseReply(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		reply, err := parseReply(`{
			"sentiment_score": 0.7,
			"confidence": 0.85,
			"relevance": 0.9,
			"themes": ["earnings growth", " dividend "],
			"summary": "Bank profit up 20 percent in Q2"
		}`)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, reply.SentimentScore, 1e-9)
		assert.InDelta(t, 0.85, reply.Confidence, 1e-9)
		assert.InDelta(t, 0.9, reply.Relevance, 1e-9)
		assert.Equal(t, []string{"earnings growth", "dividend"}, reply.Themes)
		assert.Equal(t, "Bank profit up 20 percent in Q2", reply.Summary)
	})

	t.Run("markdown fenced json", func(t *testing.T) {
		reply, err := parseReply("```json\n{\"sentiment_score\": -0.3, \"confidence\": 0.6, \"relevance\": 0.5, \"themes\": [], \"summary\": \"ok\"}\n```")
		require.NoError(t, err)
		assert.InDelta(t, -0.3, reply.SentimentScore, 1e-9)
	})

	t.Run("bare fence without language tag", func(t *testing.T) {
		reply, err := parseReply("```\n{\"sentiment_score\": 0, \"confidence\": 0.5, \"relevance\": 0.5, \"themes\": [\"x\"], \"summary\": \"s\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, reply.Themes)
	})

	t.Run("out of range values are clamped", func(t *testing.T) {
		reply, err := parseReply(`{"sentiment_score": 3.5, "confidence": -0.2, "relevance": 1.4, "themes": [], "summary": "s"}`)
		require.NoError(t, err)
		assert.InDelta(t, 1, reply.SentimentScore, 1e-9)
		assert.InDelta(t, 0, reply.Confidence, 1e-9)
		assert.InDelta(t, 1, reply.Relevance, 1e-9)
	})

	t.Run("long summary is truncated", func(t *testing.T) {
		long := strings.Repeat("a", 300)
		reply, err := parseReply(`{"sentiment_score": 0, "confidence": 0.5, "relevance": 0.5, "themes": [], "summary": "` + long + `"}`)
		require.NoError(t, err)
		assert.Len(t, reply.Summary, summaryLimit)
	})

	t.Run("missing required field is malformed", func(t *testing.T) {
		_, err := parseReply(`{"confidence": 0.5, "relevance": 0.5, "themes": [], "summary": "s"}`)
		assert.ErrorIs(t, err, contracts.ErrOracleMalformed)
	})

	t.Run("non-json is malformed", func(t *testing.T) {
		_, err := parseReply("I cannot analyze this article.")
		assert.ErrorIs(t, err, contracts.ErrOracleMalformed)
	})
}

func TestBuildPromptTruncatesArticle(t *testing.T) {
	text := strings.Repeat("b", articleTextLimit+500)
	prompt := buildPrompt(text, "BBCA.JK")
	assert.Contains(t, prompt, "BBCA.JK")
	assert.Less(t, len(prompt), articleTextLimit+1000)
}
