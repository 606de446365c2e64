package config

import (
	"fmt"
	"strings"
)

// Provider defaults, cheapest usable model per provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	defaultAnthropicModel = "claude-haiku-4-5"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Resolve picks the first non-empty value in priority order: explicit
// override (usually an environment variable), configured value, fixed
// default. It is a pure function so the cascade is testable without
// touching the environment.
func Resolve(override, configured, fallback string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	return fallback
}

// ResolveProvider resolves which LLM provider to use: override, then the
// configured value, then auto-detection from whichever API key is present
// (anthropic before openai). No provider at all is a hard error; the
// caller falls back to the free pipeline.
func ResolveProvider(override, configured string, hasAnthropicKey, hasOpenAIKey bool) (string, error) {
	for _, candidate := range []string{override, configured} {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if candidate != ProviderAnthropic && candidate != ProviderOpenAI {
			return "", fmt.Errorf("unsupported provider %q (want %s or %s)", candidate, ProviderAnthropic, ProviderOpenAI)
		}
		return candidate, nil
	}
	if hasAnthropicKey {
		return ProviderAnthropic, nil
	}
	if hasOpenAIKey {
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("no LLM provider configured and no API key found; set ANTHROPIC_API_KEY or OPENAI_API_KEY")
}

// DefaultModel returns the fixed fallback model for a resolved provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return defaultOpenAIModel
	default:
		return defaultAnthropicModel
	}
}
