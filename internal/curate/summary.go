package curate

import (
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)
	wordExpr      = regexp.MustCompile(`\b[a-z]{4,}\b`)
)

const minSentenceLen = 30

// Summarize produces an extractive summary of text: the numSentences
// highest-scoring sentences by normalized word frequency, re-joined in
// their original order. Used by the free pipeline, which has no LLM.
func Summarize(text string, numSentences int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if numSentences <= 0 {
		numSentences = 3
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		if len(text) > 300 {
			return strings.TrimSpace(text[:300])
		}
		return text
	}
	if len(sentences) <= numSentences {
		return strings.Join(sentences, " ")
	}

	freq := map[string]float64{}
	maxFreq := 1.0
	for _, w := range wordExpr.FindAllString(strings.ToLower(text), -1) {
		freq[w]++
		if freq[w] > maxFreq {
			maxFreq = freq[w]
		}
	}

	score := func(sentence string) float64 {
		words := wordExpr.FindAllString(strings.ToLower(sentence), -1)
		if len(words) == 0 {
			return 0
		}
		var total float64
		for _, w := range words {
			total += freq[w] / maxFreq
		}
		return total / float64(len(words))
	}

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return score(sentences[indices[a]]) > score(sentences[indices[b]])
	})

	top := indices[:numSentences]
	sort.Ints(top)

	picked := make([]string, 0, numSentences)
	for _, idx := range top {
		picked = append(picked, sentences[idx])
	}
	return strings.Join(picked, " ")
}

// splitSentences breaks text on sentence boundaries and drops fragments too
// short to be meaningful.
func splitSentences(text string) []string {
	boundaries := sentenceSplit.FindAllStringIndex(text, -1)
	var sentences []string
	start := 0
	for _, b := range boundaries {
		sentences = append(sentences, text[start:b[0]+1])
		start = b[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	kept := sentences[:0]
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) > minSentenceLen {
			kept = append(kept, s)
		}
	}
	return kept
}
