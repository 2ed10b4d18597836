package contracts

import "time"

// Article processing statuses. An article stays unprocessed (empty
// status) until the sentiment batch picks it up; transient oracle
// failures leave it unprocessed for the next run, permanent failures
// mark it failed so it is not retried indefinitely.
const (
	ArticleCompleted = "completed"
	ArticleFailed    = "failed"
)

// NewsArticle is a collected news item. Read-only to the analysis core;
// the news collector produces them.
type NewsArticle struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	SymbolHints []string   `json:"symbol_hints"`
	PublishedAt time.Time  `json:"published_at"`
	Text        string     `json:"text"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// Body returns the best available text for analysis
func (a *NewsArticle) Body() string {
	if a.Text != "" {
		return a.Text
	}
	return a.Title
}

// SentimentReply is the structured reply of the sentiment oracle for
// one (article text, target symbol) request.
type SentimentReply struct {
	SentimentScore float64  `json:"sentiment_score"` // [-1,1]
	Confidence     float64  `json:"confidence"`      // [0,1]
	Relevance      float64  `json:"relevance"`       // [0,1]
	Themes         []string `json:"themes"`
	Summary        string   `json:"summary"`
}

// SentimentResult is an accepted oracle reply keyed to its article and
// symbol. Results accumulate across the lookback window and are never
// deleted, only aggregated.
type SentimentResult struct {
	ArticleID      int64     `json:"article_id"`
	Symbol         string    `json:"symbol"`
	SentimentScore float64   `json:"sentiment_score"`
	Confidence     float64   `json:"confidence"`
	Relevance      float64   `json:"relevance"`
	Themes         []string  `json:"themes"`
	Summary        string    `json:"summary"`
	ModelUsed      string    `json:"model_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// Weight is the aggregation weight of a single result
func (r *SentimentResult) Weight() float64 {
	return r.Confidence * r.Relevance
}
