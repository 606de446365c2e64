package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
)

func TestDispatchDedupe(t *testing.T) {
	t.Parallel()

	tb := newTestToolbox(&stubFeeds{}, &stubExtractor{})
	mon := guard.NewMonitor(guard.DefaultLimits())

	input := `{"items":[
		{"title":"A","url":"https://example.com/a?utm_source=x"},
		{"title":"A again","url":"https://example.com/a"},
		{"title":"B","url":"https://example.com/b"}
	]}`
	payload, isError := tb.Dispatch(context.Background(), "dedupe", json.RawMessage(input), mon)
	if isError {
		t.Fatalf("dedupe reported error: %s", payload)
	}

	var out []domain.Article
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		t.Fatalf("decode dedupe payload: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 unique articles, got %d", len(out))
	}
	if out[0].URL != "https://example.com/a" {
		t.Fatalf("expected canonical url, got %q", out[0].URL)
	}
}

func TestDispatchRankDefaultsTopK(t *testing.T) {
	t.Parallel()

	tb := newTestToolbox(&stubFeeds{}, &stubExtractor{})
	mon := guard.NewMonitor(guard.DefaultLimits())

	input := `{"items":[
		{"title":"old","url":"https://example.com/old","published_ts":1600000000},
		{"title":"new","url":"https://example.com/new","published_ts":1700000000}
	]}`
	payload, isError := tb.Dispatch(context.Background(), "rank", json.RawMessage(input), mon)
	if isError {
		t.Fatalf("rank reported error: %s", payload)
	}

	var out []domain.Article
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		t.Fatalf("decode rank payload: %v", err)
	}
	if len(out) != 2 || out[0].Title != "new" {
		t.Fatalf("expected newest first, got %+v", out)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()

	tb := newTestToolbox(&stubFeeds{}, &stubExtractor{})
	mon := guard.NewMonitor(guard.DefaultLimits())

	payload, isError := tb.Dispatch(context.Background(), "launch_rockets", json.RawMessage(`{}`), mon)
	if !isError {
		t.Fatal("expected unknown tool to report an error")
	}
	if !strings.Contains(payload, "unknown tool") {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestDispatchBadArguments(t *testing.T) {
	t.Parallel()

	tb := newTestToolbox(&stubFeeds{}, &stubExtractor{})
	mon := guard.NewMonitor(guard.DefaultLimits())

	payload, isError := tb.Dispatch(context.Background(), "fetch_rss", json.RawMessage(`{"source_url":42}`), mon)
	if !isError {
		t.Fatal("expected malformed arguments to report an error")
	}
	if !strings.Contains(payload, "invalid fetch_rss arguments") {
		t.Fatalf("unexpected payload: %s", payload)
	}
}
