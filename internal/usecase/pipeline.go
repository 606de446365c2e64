package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsDigest/internal/curate"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/render"
)

const (
	maxArticleTextLen = 7000
	completionTokens  = 4096
)

const singleShotSystemPrompt = `You are a news digest writer. Given a list of articles with their text,
produce a single JSON object with these fields: "subject" (string), "themes"
(array of 1 to 5 strings), "items" (array of 1 to 10 objects with "title",
"url", "bullets" of 1 to 5 strings, and "why_it_matters"), and "html_body"
(an empty string; the HTML email is rendered separately). Reply with only
the JSON object.`

// SingleShot is the deterministic pipeline: fetch, dedupe, rank and extract
// locally, then make exactly one model call to write the digest.
type SingleShot struct {
	Feeds      ports.FeedSource
	Extractor  ports.Extractor
	Completer  ports.Completer
	Mailer     ports.Mailer
	Runs       ports.RunRepository
	FeedURLs   []string
	Recipient  string
	MaxPerFeed int
	TopK       int
	Limits     guard.Limits
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Run executes one digest cycle end to end and emails the result.
func (p *SingleShot) Run(ctx context.Context) error {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	mon := guard.NewMonitorWithClock(p.Limits, clock)
	log := p.logger().With("run_id", uuid.NewString(), "mode", string(domain.ModeSingle))

	articles := p.collect(ctx, log)
	if len(articles) == 0 {
		return domain.E(domain.KindTransient, "no articles fetched from any feed")
	}

	articles = curate.Dedupe(articles)
	topK := p.TopK
	if topK <= 0 {
		topK = curate.DefaultTopK
	}
	articles = curate.RankAt(articles, topK, clock())
	log.Info("articles curated", "kept", len(articles))

	p.enrich(ctx, articles, mon, log)

	if err := mon.CheckWallClock(); err != nil {
		return err
	}

	raw, err := p.Completer.Complete(ctx, singleShotSystemPrompt, p.articlePrompt(articles, clock()), completionTokens)
	if err != nil {
		return err
	}

	out, err := digest.ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := digest.Validate(out, digest.SingleShotBounds()); err != nil {
		return err
	}

	html, err := render.HTML(out, clock())
	if err != nil {
		return err
	}

	if err := p.Mailer.Send(ctx, domain.Email{
		To:      p.Recipient,
		Subject: out.Subject,
		Body:    html,
		HTML:    true,
	}); err != nil {
		return err
	}

	p.saveRun(ctx, out, log)
	log.Info("digest delivered", "subject", out.Subject, "items", len(out.Items))
	return nil
}

// collect fetches every configured feed, capping entries per feed. A failing
// feed is logged and skipped so one dead source cannot kill the run.
func (p *SingleShot) collect(ctx context.Context, log *slog.Logger) []domain.Article {
	var articles []domain.Article
	for _, feedURL := range p.FeedURLs {
		fetched, err := p.Feeds.Fetch(ctx, feedURL)
		if err != nil {
			log.Warn("feed skipped", "url", feedURL, "error", err)
			continue
		}
		if p.MaxPerFeed > 0 && len(fetched) > p.MaxPerFeed {
			fetched = fetched[:p.MaxPerFeed]
		}
		articles = append(articles, fetched...)
	}
	return articles
}

// enrich attaches extracted page text to the ranked articles, within the
// fetch budget. Articles whose extraction fails keep an empty Text and are
// summarized from the title alone.
func (p *SingleShot) enrich(ctx context.Context, articles []domain.Article, mon *guard.Monitor, log *slog.Logger) {
	for i := range articles {
		if !mon.AllowFetch() {
			log.Warn("fetch budget spent", "remaining_articles", len(articles)-i)
			return
		}
		res := p.Extractor.Extract(ctx, articles[i].URL)
		if res.ExtractedOK {
			articles[i].Text = curate.Truncate(res.Text, maxArticleTextLen)
		}
	}
}

func (p *SingleShot) articlePrompt(articles []domain.Article, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s. Write the digest from these articles:\n\n", now.Format("Monday, January 2, 2006"))
	for i, a := range articles {
		fmt.Fprintf(&b, "### Article %d\nTitle: %s\nURL: %s\n", i+1, a.Title, a.URL)
		if a.PublishedTS > 0 {
			fmt.Fprintf(&b, "Published: %s\n", time.Unix(a.PublishedTS, 0).UTC().Format(time.RFC3339))
		}
		if a.Text != "" {
			fmt.Fprintf(&b, "Text:\n%s\n", a.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *SingleShot) saveRun(ctx context.Context, out digest.Output, log *slog.Logger) {
	if p.Runs == nil {
		return
	}
	run := domain.DigestRun{
		ID:        uuid.NewString(),
		Mode:      domain.ModeSingle,
		Subject:   out.Subject,
		Themes:    out.Themes,
		ItemCount: len(out.Items),
		SentTo:    p.Recipient,
	}
	if err := p.Runs.SaveRun(ctx, run); err != nil {
		log.Warn("digest run not persisted", "error", err)
	}
}

func (p *SingleShot) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
