package curate

const truncationMarker = " … [truncated]"

// Truncate caps text at maxLen characters and appends a marker so downstream
// prompts know the tail was cut.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + truncationMarker
}
