package curate

import "NewsDigest/internal/domain"

// Dedupe removes articles whose URLs canonicalize to an already-seen value,
// keeping the first occurrence and rewriting each survivor to carry its
// canonical URL. Articles whose URL canonicalizes to "" are dropped. The
// input is not modified.
func Dedupe(items []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Article, 0, len(items))
	for _, item := range items {
		canon := Canonicalize(item.URL)
		if canon == "" {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		item.URL = canon
		out = append(out, item)
	}
	return out
}
