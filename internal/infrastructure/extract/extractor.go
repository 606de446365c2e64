package extract

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// ReadabilityExtractor pulls article body text from a page. It never returns
// an error: any failure yields an ExtractResult with ExtractedOK=false so
// callers can fall back to titles and summaries.
type ReadabilityExtractor struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Extractor = (*ReadabilityExtractor)(nil)

func NewReadabilityExtractor(client *http.Client, logger *slog.Logger) *ReadabilityExtractor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ReadabilityExtractor{client: client, logger: logger}
}

func (e *ReadabilityExtractor) Extract(ctx context.Context, pageURL string) domain.ExtractResult {
	res := domain.ExtractResult{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		e.debug("extract request build failed", "url", pageURL, "error", err)
		return res
	}
	req.Header.Set("User-Agent", "NewsDigest/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		e.debug("extract request failed", "url", pageURL, "error", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.debug("extract got non-2xx status", "url", pageURL, "status", resp.StatusCode)
		return res
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return res
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			res.Text = text
			res.ExtractedOK = true
			return res
		}
	}

	// Readability found nothing usable; retry the page with a plain
	// paragraph scrape before giving up.
	return e.paragraphFallback(ctx, pageURL, res)
}

func (e *ReadabilityExtractor) paragraphFallback(ctx context.Context, pageURL string, res domain.ExtractResult) domain.ExtractResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return res
	}
	req.Header.Set("User-Agent", "NewsDigest/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return res
	}

	var parts []string
	doc.Find("article p, main p, p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		e.debug("extract found no paragraphs", "url", pageURL)
		return res
	}

	res.Text = strings.Join(parts, "\n\n")
	res.ExtractedOK = true
	return res
}

func (e *ReadabilityExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
