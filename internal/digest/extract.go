package digest

import (
	"encoding/json"
	"strings"

	"NewsDigest/internal/domain"
)

const previewLen = 200

// ExtractJSON locates and decodes the digest object inside free-form model
// output. Models are not guaranteed to return bare JSON, so three attempts
// run in order: the whole trimmed text, the text with Markdown code fences
// stripped, and the outermost brace-delimited substring. Failure of all
// three is a parse error carrying a preview of the offending text.
func ExtractJSON(text string) (Output, error) {
	stripped := strings.TrimSpace(text)

	if out, ok := tryDecode(stripped); ok {
		return out, nil
	}
	if out, ok := tryDecode(stripFences(stripped)); ok {
		return out, nil
	}
	if open := strings.Index(stripped, "{"); open >= 0 {
		if close := strings.LastIndex(stripped, "}"); close > open {
			if out, ok := tryDecode(stripped[open : close+1]); ok {
				return out, nil
			}
		}
	}

	return Output{}, domain.E(domain.KindParse,
		"model response contained no valid digest JSON (preview: %q)", preview(stripped))
}

var requiredFields = []string{"subject", "themes", "items", "html_body"}

func tryDecode(candidate string) (Output, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate[0] != '{' {
		return Output{}, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &keys); err != nil {
		return Output{}, false
	}
	var out Output
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return Output{}, false
	}
	// Struct decoding cannot tell an absent key from a zero value, so key
	// presence is recorded here for the validator.
	for _, field := range requiredFields {
		if _, ok := keys[field]; !ok {
			out.missingFields = append(out.missingFields, field)
		}
	}
	return out, true
}

// stripFences removes a leading ``` or ```json marker and a trailing ```.
func stripFences(text string) string {
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	if before, ok := strings.CutSuffix(strings.TrimSpace(text), "```"); ok {
		text = before
	}
	return strings.TrimSpace(text)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLen {
		return string(runes[:previewLen]) + "…"
	}
	return text
}
