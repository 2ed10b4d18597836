package marketdata

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alphagen/alphagen/internal/contracts"
	"github.com/alphagen/alphagen/internal/universe"
	"github.com/alphagen/alphagen/pkg/httputil"
	"github.com/alphagen/alphagen/pkg/logger"
)

// NewsCollector pulls articles from Indonesian financial RSS feeds,
// tags them with the symbols they mention and stores them for the
// sentiment stage.
type NewsCollector struct {
	client   *httputil.Client
	feeds    []string
	news     contracts.NewsRepository
	keywords map[string]string // lowercased keyword -> symbol
	logger   *logger.Logger
}

func NewNewsCollector(client *httputil.Client, feeds []string, news contracts.NewsRepository, log *logger.Logger) *NewsCollector {
	return &NewsCollector{
		client:   client,
		feeds:    feeds,
		news:     news,
		keywords: buildKeywordIndex(),
		logger:   log,
	}
}

// rssFeed covers the RSS 2.0 subset the Indonesian feeds emit.
type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// CollectStats tallies one news collection run.
type CollectStats struct {
	Feeds      int
	FeedErrors int
	Articles   int
	Stored     int
}

// Collect fetches every configured feed and stores articles published
// within the window. Duplicate URLs are ignored by the repository's
// conflict handling. A failing feed is logged and skipped.
func (c *NewsCollector) Collect(ctx context.Context, since time.Time) (*CollectStats, error) {
	stats := &CollectStats{Feeds: len(c.feeds)}

	for _, feedURL := range c.feeds {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		body, err := c.client.GetBytes(ctx, feedURL)
		if err != nil {
			stats.FeedErrors++
			c.logger.WithError(err).WithField("feed", feedURL).Warn("RSS fetch failed")
			continue
		}

		var feed rssFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			stats.FeedErrors++
			c.logger.WithError(err).WithField("feed", feedURL).Warn("RSS parse failed")
			continue
		}

		source := feed.Channel.Title
		if source == "" {
			source = feedURL
		}

		for _, item := range feed.Channel.Items {
			article, ok := c.buildArticle(item, source, since)
			if !ok {
				continue
			}
			stats.Articles++

			id, err := c.news.Save(ctx, article)
			if err != nil {
				c.logger.WithError(err).WithField("url", article.URL).Warn("Failed to store article")
				continue
			}
			if id > 0 {
				stats.Stored++
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"feeds":       stats.Feeds,
		"feed_errors": stats.FeedErrors,
		"articles":    stats.Articles,
		"stored":      stats.Stored,
	}).Info("News collection completed")

	return stats, nil
}

func (c *NewsCollector) buildArticle(item rssItem, source string, since time.Time) (*contracts.NewsArticle, bool) {
	url := strings.TrimSpace(item.Link)
	if url == "" {
		url = strings.TrimSpace(item.GUID)
	}
	if url == "" || strings.TrimSpace(item.Title) == "" {
		return nil, false
	}

	published := parseRSSDate(item.PubDate)
	if !published.IsZero() && published.Before(since) {
		return nil, false
	}
	if published.IsZero() {
		published = time.Now().UTC()
	}

	text := cleanHTML(item.Description)
	title := cleanHTML(item.Title)

	return &contracts.NewsArticle{
		Title:       title,
		URL:         url,
		Source:      source,
		SymbolHints: c.tagSymbols(title + " " + text),
		PublishedAt: published,
		Text:        text,
	}, true
}

// tagSymbols scans article text for universe tickers and company name
// keywords. Hints are returned in universe order, deduplicated.
func (c *NewsCollector) tagSymbols(text string) []string {
	lower := strings.ToLower(text)
	matched := map[string]bool{}
	for keyword, symbol := range c.keywords {
		if strings.Contains(lower, keyword) {
			matched[symbol] = true
		}
	}
	if len(matched) == 0 {
		return nil
	}

	var hints []string
	for _, symbol := range universe.Symbols() {
		if matched[symbol] {
			hints = append(hints, symbol)
		}
	}
	return hints
}

// buildKeywordIndex maps lowercased tickers and distinctive company
// name words to their symbols. Generic words like "bank" or the Tbk
// suffix are excluded to keep matches meaningful.
func buildKeywordIndex() map[string]string {
	skip := map[string]bool{
		"tbk": true, "bank": true, "indonesia": true, "(persero)": true,
		"pp": true, "media": true, "industry": true, "milk": true,
	}

	index := make(map[string]string)
	for _, stock := range universe.Stocks() {
		index[strings.ToLower(universe.CleanSymbol(stock.Symbol))] = stock.Symbol
		for _, word := range strings.Fields(strings.ToLower(stock.Name)) {
			if len(word) > 3 && !skip[word] {
				index[word] = stock.Symbol
			}
		}
	}
	return index
}

// cleanHTML strips markup from feed fields, which often embed image
// tags and anchors inside descriptions.
func cleanHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

var rssDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func parseRSSDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range rssDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// String implements fmt.Stringer for log lines.
func (s *CollectStats) String() string {
	return fmt.Sprintf("feeds=%d errors=%d articles=%d stored=%d", s.Feeds, s.FeedErrors, s.Articles, s.Stored)
}
