package curate

import (
	"strings"
	"testing"
)

func TestSummarizeShortTextReturnedWhole(t *testing.T) {
	t.Parallel()

	text := "This is the first proper sentence of the text. Here is another full sentence for it."
	if got := Summarize(text, 3); got != text {
		t.Fatalf("expected short text unchanged, got %q", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	if got := Summarize("   ", 3); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

func TestSummarizePicksSentencesInOriginalOrder(t *testing.T) {
	t.Parallel()

	text := "The election results surprised analysts across the country today. " +
		"Unrelated filler about weather happened somewhere else entirely. " +
		"Analysts said the election results would reshape the county council. " +
		"More filler text about a bake sale with many cheerful attendees. " +
		"The council election analysts called the results truly historic."
	got := Summarize(text, 2)

	first := strings.Index(got, "surprised analysts")
	second := strings.Index(got, "historic")
	if first == -1 && second == -1 {
		t.Fatalf("expected election sentences in summary, got %q", got)
	}
	if n := strings.Count(got, "."); n > 2 {
		t.Fatalf("expected at most 2 sentences, got %q", got)
	}
}
