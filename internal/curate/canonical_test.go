package curate

import "testing"

func TestCanonicalizeStripsTrackingParams(t *testing.T) {
	t.Parallel()

	got := Canonicalize("https://example.com/story?utm_source=rss&id=7&fbclid=abc#section")
	want := "https://example.com/story?id=7"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanonicalizePreservesParamOrder(t *testing.T) {
	t.Parallel()

	got := Canonicalize("https://example.com/a?z=1&utm_medium=email&a=2&b=3")
	want := "https://example.com/a?z=1&a=2&b=3"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanonicalizeCaseInsensitiveKeys(t *testing.T) {
	t.Parallel()

	got := Canonicalize("https://example.com/a?UTM_Source=x&keep=y")
	want := "https://example.com/a?keep=y"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/story?utm_source=rss&id=7#frag",
		"  https://example.com/plain  ",
		"://not a url",
		"https://example.com/?ref=home&gclid=1",
		"",
	}
	for _, raw := range inputs {
		once := Canonicalize(raw)
		twice := Canonicalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", raw, once, twice)
		}
	}
}

func TestCanonicalizeParseFailureFallsBack(t *testing.T) {
	t.Parallel()

	raw := "  http://example.com/%zz-bad-escape  "
	if got := Canonicalize(raw); got != "http://example.com/%zz-bad-escape" {
		t.Fatalf("expected trimmed original, got %q", got)
	}
}
