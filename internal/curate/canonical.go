package curate

import (
	"net/url"
	"strings"
)

// Query parameters that carry no semantic value and are stripped when
// canonicalizing a URL for deduplication.
var trackingQueryParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"fbclid":       {},
	"gclid":        {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref":          {},
	"source":       {},
	"_ga":          {},
	"igshid":       {},
	"twclid":       {},
}

// Canonicalize strips tracking query parameters and the fragment from raw.
// The order of surviving parameters and the rest of the URL structure are
// preserved, so the function is idempotent. On parse failure it returns the
// trimmed input unchanged; it never fails.
func Canonicalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	if parsed.RawQuery != "" {
		parsed.RawQuery = stripTracking(parsed.RawQuery)
	}

	return parsed.String()
}

// stripTracking filters raw query pairs in place, keeping original order
// and escaping for the pairs that survive.
func stripTracking(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key := pair
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			key = pair[:idx]
		}
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if _, drop := trackingQueryParams[strings.ToLower(key)]; drop {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
