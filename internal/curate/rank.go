package curate

import (
	"sort"
	"time"

	"NewsDigest/internal/domain"
)

// DefaultTopK bounds how many articles survive ranking when the caller
// passes no explicit limit.
const DefaultTopK = 10

// Rank orders articles by recency-decay score, descending, and returns the
// first topK. The sort is stable, so articles with equal scores keep their
// input order. Articles without a published timestamp score zero.
func Rank(items []domain.Article, topK int) []domain.Article {
	return RankAt(items, topK, time.Now().UTC())
}

// RankAt is Rank with an explicit reference time.
func RankAt(items []domain.Article, topK int, now time.Time) []domain.Article {
	if topK <= 0 {
		topK = DefaultTopK
	}

	ranked := make([]domain.Article, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].Score = RecencyScore(ranked[i].PublishedTS, now)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// RecencyScore maps a published timestamp onto (0,1]: 1 for just published,
// smoothly decaying with age. A zero timestamp means the feed supplied no
// parseable date and scores 0, sorting behind everything dated.
func RecencyScore(publishedTS int64, now time.Time) float64 {
	if publishedTS == 0 {
		return 0
	}
	days := float64(now.Unix()-publishedTS) / 86400
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days)
}
