// Package digest defines the structured output contract produced by the
// LLM and enforced before anything downstream consumes it.
package digest

// Item is one article entry in the digest.
type Item struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Bullets      []string `json:"bullets"`
	WhyItMatters string   `json:"why_it_matters"`
}

// Output is the digest wire contract: the only shape accepted from the
// model. It is built once per run, validated immediately, and discarded
// after rendering and sending.
type Output struct {
	Subject  string   `json:"subject"`
	Themes   []string `json:"themes"`
	Items    []Item   `json:"items"`
	HTMLBody string   `json:"html_body"`

	// missingFields lists top-level keys absent from the decoded JSON.
	// All four keys must be present even when a variant ignores the
	// field's value. Populated by ExtractJSON, enforced by Validate.
	missingFields []string
}

// Bounds constrains the digest shape. The two pipeline variants carry
// different bounds; the validator is shared.
type Bounds struct {
	ThemesMin  int
	ThemesMax  int
	ItemsMin   int
	ItemsMax   int
	BulletsMin int
	BulletsMax int
	// RequireHTMLBody is set for the agent loop, where the model authors
	// the HTML itself. The single-shot pipeline renders HTML separately
	// and ignores the field.
	RequireHTMLBody bool
}

// AgentBounds is the contract for the tool-calling loop variant.
func AgentBounds() Bounds {
	return Bounds{
		ThemesMin:  3,
		ThemesMax:  3,
		ItemsMin:   5,
		ItemsMax:   10,
		BulletsMin: 1,
		BulletsMax: 5,

		RequireHTMLBody: true,
	}
}

// SingleShotBounds is the contract for the pre-fetch single-call variant.
func SingleShotBounds() Bounds {
	return Bounds{
		ThemesMin:  1,
		ThemesMax:  5,
		ItemsMin:   1,
		ItemsMax:   10,
		BulletsMin: 1,
		BulletsMax: 5,
	}
}
