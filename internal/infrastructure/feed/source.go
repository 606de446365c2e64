package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Source fetches RSS/Atom feeds and maps entries onto domain articles.
type Source struct {
	parser *gofeed.Parser
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource wires a gofeed parser; client defaults to a 20s-timeout client.
func NewSource(client *http.Client, logger *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "NewsDigest/1.0"
	return &Source{parser: parser, logger: logger, now: time.Now}
}

// Fetch parses one feed and returns its entries in document order. Entries
// without a link are skipped; a missing title falls back to the link, and a
// missing or unparseable date defaults to the fetch time.
func (s *Source) Fetch(ctx context.Context, feedURL string) ([]domain.Article, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = link
		}

		articles = append(articles, domain.Article{
			Title:       title,
			URL:         link,
			PublishedTS: s.publishedTS(item),
			Source:      feedURL,
		})
	}

	s.debug("feed fetched", "url", feedURL, "entries", len(articles))
	return articles, nil
}

func (s *Source) publishedTS(item *gofeed.Item) int64 {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Unix()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Unix()
	}
	return s.now().UTC().Unix()
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
