package digest

import (
	"strings"

	"NewsDigest/internal/domain"
)

// Validate enforces the output contract against the given bounds. It is the
// sole gate between free-form model output and the renderer/mailer, so it
// is strict: any violation fails the whole pipeline attempt, never a
// partial acceptance.
func Validate(out Output, b Bounds) error {
	if len(out.missingFields) > 0 {
		return domain.E(domain.KindValidation,
			"digest missing required field %q", out.missingFields[0])
	}
	if strings.TrimSpace(out.Subject) == "" {
		return domain.E(domain.KindValidation, "digest missing subject")
	}
	if len(out.Themes) < b.ThemesMin || len(out.Themes) > b.ThemesMax {
		return domain.E(domain.KindValidation,
			"digest has %d themes, want %d-%d", len(out.Themes), b.ThemesMin, b.ThemesMax)
	}
	for i, theme := range out.Themes {
		if strings.TrimSpace(theme) == "" {
			return domain.E(domain.KindValidation, "themes[%d] is empty", i)
		}
	}

	if len(out.Items) == 0 {
		return domain.E(domain.KindValidation, "digest has no items")
	}
	if len(out.Items) < b.ItemsMin || len(out.Items) > b.ItemsMax {
		return domain.E(domain.KindValidation,
			"digest has %d items, want %d-%d", len(out.Items), b.ItemsMin, b.ItemsMax)
	}
	for i, item := range out.Items {
		if strings.TrimSpace(item.Title) == "" {
			return domain.E(domain.KindValidation, "items[%d] missing title", i)
		}
		if strings.TrimSpace(item.URL) == "" {
			return domain.E(domain.KindValidation, "items[%d] missing url", i)
		}
		if len(item.Bullets) < b.BulletsMin || len(item.Bullets) > b.BulletsMax {
			return domain.E(domain.KindValidation,
				"items[%d] has %d bullets, want %d-%d", i, len(item.Bullets), b.BulletsMin, b.BulletsMax)
		}
		if strings.TrimSpace(item.WhyItMatters) == "" {
			return domain.E(domain.KindValidation, "items[%d] missing why_it_matters", i)
		}
	}

	if b.RequireHTMLBody && strings.TrimSpace(out.HTMLBody) == "" {
		return domain.E(domain.KindValidation, "digest missing html_body")
	}

	return nil
}
