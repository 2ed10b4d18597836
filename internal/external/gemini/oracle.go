package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/pkg/config"
	"github.com/alphagen/alphagen/pkg/logger"
)

// articleTextLimit bounds the prompt size per article.
const articleTextLimit = 2000

// Oracle implements contracts.SentimentOracle on the Gemini API.
type Oracle struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

func NewOracle(ctx context.Context, cfg config.OracleConfig, log *logger.Logger) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"model":   cfg.Model,
		"timeout": cfg.Timeout.String(),
	}).Info("Gemini sentiment oracle initialized")

	return &Oracle{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  log,
	}, nil
}

// Model returns the configured model name, recorded on each result.
func (o *Oracle) Model() string {
	return o.model
}

// Analyze sends one article to Gemini and parses the structured reply.
// API failures map to ErrOracleTransient (retried next run); replies
// that cannot be parsed map to ErrOracleMalformed (never retried).
func (o *Oracle) Analyze(ctx context.Context, text, symbol string) (*contracts.SentimentReply, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	prompt := buildPrompt(text, symbol)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini call for %s: %v: %w", symbol, err, contracts.ErrOracleTransient)
	}

	raw := extractText(resp)
	if raw == "" {
		return nil, fmt.Errorf("empty gemini reply for %s: %w", symbol, contracts.ErrOracleMalformed)
	}

	reply, err := parseReply(raw)
	if err != nil {
		o.logger.WithError(err).WithField("symbol", symbol).Warn("Unparseable sentiment reply")
		return nil, err
	}

	return reply, nil
}

func buildPrompt(text, symbol string) string {
	if len(text) > articleTextLimit {
		text = text[:articleTextLimit]
	}
	return fmt.Sprintf(`Analyze this Indonesian financial news article about %s and return ONLY a valid JSON object with these exact keys:

REQUIRED RESPONSE FORMAT (JSON only, no additional text):
{
  "sentiment_score": <float from -1.0 (very negative) to 1.0 (very positive)>,
  "confidence": <float from 0.0 to 1.0 indicating analysis confidence>,
  "themes": [<array of 1-3 key themes, e.g., ["earnings growth", "digital transformation"]>],
  "summary": "<single sentence summary, max 100 characters>",
  "relevance": <float from 0.0 to 1.0 indicating relevance to stock price movement>
}

ANALYSIS GUIDELINES:
- Focus on financial impact and business implications
- Consider both short-term and long-term effects on company value
- For Indonesian content, understand local business context
- Themes should be concise business/financial concepts
- Summary should capture the main investment-relevant point

ARTICLE TEXT:
%s`, symbol, text)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
