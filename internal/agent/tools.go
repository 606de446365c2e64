package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"NewsDigest/internal/curate"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
	"NewsDigest/internal/ports"
)

const (
	toolFetchRSS         = "fetch_rss"
	toolFetchArticleText = "fetch_article_text"
	toolDedupe           = "dedupe"
	toolRank             = "rank"
)

const maxToolTextLen = 7000

// Toolbox executes the model's tool calls against real adapters.
type Toolbox struct {
	Feeds      ports.FeedSource
	Extractor  ports.Extractor
	MaxPerFeed int
	Logger     *slog.Logger
}

type fetchRSSArgs struct {
	SourceURL string `json:"source_url"`
}

type fetchTextArgs struct {
	URL string `json:"url"`
}

type dedupeArgs struct {
	Items []domain.Article `json:"items"`
}

type rankArgs struct {
	Items []domain.Article `json:"items"`
	TopK  int              `json:"top_k"`
}

// Schemas describes every tool the model may call.
func (t *Toolbox) Schemas() []domain.ToolSchema {
	articleItems := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":        map[string]any{"type": "string"},
				"url":          map[string]any{"type": "string"},
				"published_ts": map[string]any{"type": "integer"},
				"source":       map[string]any{"type": "string"},
			},
			"required": []string{"url"},
		},
	}

	return []domain.ToolSchema{
		{
			Name:        toolFetchRSS,
			Description: "Fetch an RSS/Atom feed and return its entries as articles.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source_url": map[string]any{"type": "string", "description": "Feed URL to fetch."},
				},
				"required": []string{"source_url"},
			},
		},
		{
			Name:        toolFetchArticleText,
			Description: "Fetch the readable body text of one article page. May be skipped when the fetch budget is spent; then use the title and summary instead.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string", "description": "Article URL to extract."},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        toolDedupe,
			Description: "Remove duplicate articles by canonical URL, keeping the first occurrence.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": articleItems,
				},
				"required": []string{"items"},
			},
		},
		{
			Name:        toolRank,
			Description: "Sort articles by recency score, newest first, and keep the top_k best.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": articleItems,
					"top_k": map[string]any{"type": "integer", "description": "How many articles to keep."},
				},
				"required": []string{"items"},
			},
		},
	}
}

// Dispatch runs one tool call. The string result goes back to the model
// verbatim; isError marks tool failures without aborting the run.
func (t *Toolbox) Dispatch(ctx context.Context, name string, input json.RawMessage, mon *guard.Monitor) (string, bool) {
	switch name {
	case toolFetchRSS:
		var args fetchRSSArgs
		if err := json.Unmarshal(input, &args); err != nil {
			return errorPayload(fmt.Sprintf("invalid %s arguments: %v", name, err)), true
		}
		return t.fetchRSS(ctx, args)

	case toolFetchArticleText:
		var args fetchTextArgs
		if err := json.Unmarshal(input, &args); err != nil {
			return errorPayload(fmt.Sprintf("invalid %s arguments: %v", name, err)), true
		}
		return t.fetchArticleText(ctx, args, mon)

	case toolDedupe:
		var args dedupeArgs
		if err := json.Unmarshal(input, &args); err != nil {
			return errorPayload(fmt.Sprintf("invalid %s arguments: %v", name, err)), true
		}
		return marshalPayload(curate.Dedupe(args.Items))

	case toolRank:
		var args rankArgs
		if err := json.Unmarshal(input, &args); err != nil {
			return errorPayload(fmt.Sprintf("invalid %s arguments: %v", name, err)), true
		}
		topK := args.TopK
		if topK <= 0 {
			topK = curate.DefaultTopK
		}
		return marshalPayload(curate.Rank(args.Items, topK))

	default:
		return errorPayload(fmt.Sprintf("unknown tool %q", name)), true
	}
}

// fetchRSS is not subject to the fetch budget: that budget scopes
// article-text fetches only, so feed reads stay available for the whole run.
func (t *Toolbox) fetchRSS(ctx context.Context, args fetchRSSArgs) (string, bool) {
	articles, err := t.Feeds.Fetch(ctx, args.SourceURL)
	if err != nil {
		t.warn("feed fetch failed", "url", args.SourceURL, "error", err)
		return errorPayload(fmt.Sprintf("fetch feed %s: %v", args.SourceURL, err)), true
	}
	if t.MaxPerFeed > 0 && len(articles) > t.MaxPerFeed {
		articles = articles[:t.MaxPerFeed]
	}
	return marshalPayload(articles)
}

func (t *Toolbox) fetchArticleText(ctx context.Context, args fetchTextArgs, mon *guard.Monitor) (string, bool) {
	if !mon.AllowFetch() {
		return skippedPayload("fetch budget spent; use the article title and feed summary instead"), false
	}

	res := t.Extractor.Extract(ctx, args.URL)
	res.Text = curate.Truncate(res.Text, maxToolTextLen)
	return marshalPayload(res)
}

func marshalPayload(v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorPayload(fmt.Sprintf("encode tool result: %v", err)), true
	}
	return string(data), false
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}

func skippedPayload(reason string) string {
	data, _ := json.Marshal(map[string]string{"skipped": reason})
	return string(data)
}

func (t *Toolbox) warn(msg string, args ...any) {
	if t.Logger != nil {
		t.Logger.Warn(msg, args...)
	}
}
