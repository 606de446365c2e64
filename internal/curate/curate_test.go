package curate

import (
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

func TestDedupeFirstSeenWins(t *testing.T) {
	t.Parallel()

	items := []domain.Article{
		{Title: "first", URL: "https://example.com/story?utm_source=feed-a"},
		{Title: "second", URL: "https://example.com/story?utm_source=feed-b"},
		{Title: "third", URL: "https://example.com/other"},
	}

	out := Dedupe(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0].Title != "first" {
		t.Fatalf("expected first occurrence to survive, got %q", out[0].Title)
	}
	if out[0].URL != "https://example.com/story" {
		t.Fatalf("expected canonical URL, got %q", out[0].URL)
	}
	if out[1].Title != "third" {
		t.Fatalf("expected input order preserved, got %q", out[1].Title)
	}
}

func TestDedupeDropsEmptyURLs(t *testing.T) {
	t.Parallel()

	out := Dedupe([]domain.Article{
		{Title: "blank", URL: "   "},
		{Title: "kept", URL: "https://example.com/x"},
	})
	if len(out) != 1 || out[0].Title != "kept" {
		t.Fatalf("expected only the article with a usable URL, got %+v", out)
	}
}

func TestDedupeNoSharedCanonicalURLs(t *testing.T) {
	t.Parallel()

	items := []domain.Article{
		{URL: "https://a.com/1?gclid=x"},
		{URL: "https://a.com/1"},
		{URL: "https://a.com/2"},
		{URL: "https://a.com/2#frag"},
		{URL: "https://a.com/3"},
	}
	out := Dedupe(items)
	seen := map[string]bool{}
	for _, a := range out {
		if seen[a.URL] {
			t.Fatalf("duplicate canonical URL in output: %s", a.URL)
		}
		seen[a.URL] = true
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 unique articles, got %d", len(out))
	}
}

func TestRankOrdersByRecency(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	items := []domain.Article{
		{Title: "old", PublishedTS: now.Add(-72 * time.Hour).Unix()},
		{Title: "new", PublishedTS: now.Add(-1 * time.Hour).Unix()},
		{Title: "mid", PublishedTS: now.Add(-24 * time.Hour).Unix()},
	}

	out := RankAt(items, 10, now)
	if len(out) != 3 {
		t.Fatalf("expected full input back, got %d", len(out))
	}
	if out[0].Title != "new" || out[1].Title != "mid" || out[2].Title != "old" {
		t.Fatalf("unexpected order: %s, %s, %s", out[0].Title, out[1].Title, out[2].Title)
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	items := make([]domain.Article, 25)
	for i := range items {
		items[i].PublishedTS = now.Add(-time.Duration(i) * time.Hour).Unix()
	}
	if got := len(RankAt(items, 10, now)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := len(RankAt(items[:4], 10, now)); got != 4 {
		t.Fatalf("expected min(topK, len), got %d", got)
	}
}

func TestRankStableOnTies(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	ts := now.Add(-2 * time.Hour).Unix()
	items := []domain.Article{
		{Title: "a", PublishedTS: ts},
		{Title: "b", PublishedTS: ts},
		{Title: "c", PublishedTS: ts},
	}
	out := RankAt(items, 10, now)
	if out[0].Title != "a" || out[1].Title != "b" || out[2].Title != "c" {
		t.Fatalf("tie order not preserved: %+v", out)
	}
}

func TestRankMissingTimestampSortsLast(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	items := []domain.Article{
		{Title: "undated"},
		{Title: "dated", PublishedTS: now.Add(-240 * time.Hour).Unix()},
	}
	out := RankAt(items, 10, now)
	if out[0].Title != "dated" {
		t.Fatalf("expected dated article first, got %q", out[0].Title)
	}
	if out[1].Score != 0 {
		t.Fatalf("expected zero score for missing timestamp, got %f", out[1].Score)
	}
}

func TestRecencyScoreMonotonic(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	newer := RecencyScore(now.Add(-1*time.Hour).Unix(), now)
	older := RecencyScore(now.Add(-48*time.Hour).Unix(), now)
	if newer <= older {
		t.Fatalf("expected newer > older, got %f vs %f", newer, older)
	}
	if future := RecencyScore(now.Add(time.Hour).Unix(), now); future != 1 {
		t.Fatalf("future timestamps clamp to score 1, got %f", future)
	}
}
