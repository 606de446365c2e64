package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsDigest/internal/curate"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
	"NewsDigest/internal/ports"
)

const freeSummarySentences = 3

// Free is the no-LLM fallback pipeline: fetch, dedupe and rank locally, then
// build a plain-text digest from extractive summaries.
type Free struct {
	Feeds      ports.FeedSource
	Extractor  ports.Extractor
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

func (p *Free) Run(ctx context.Context) error {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	mon := guard.NewMonitorWithClock(p.Limits, clock)
	log := p.logger().With("run_id", uuid.NewString(), "mode", string(domain.ModeFree))

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
	if len(articles) == 0 {
		return domain.E(domain.KindTransient, "no articles fetched from any feed")
	}

	articles = curate.Dedupe(articles)
	topK := p.TopK
	if topK <= 0 {
		topK = curate.DefaultTopK
	}
	articles = curate.RankAt(articles, topK, clock())

	now := clock()
	subject := fmt.Sprintf("News digest for %s", now.Format("January 2, 2006"))
	body := p.buildBody(ctx, articles, subject, now, mon, log)

	if err := p.Mailer.Send(ctx, domain.Email{
		To:      p.Recipient,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return err
	}

	p.saveRun(ctx, subject, len(articles), log)
	log.Info("digest delivered", "subject", subject, "items", len(articles))
	return nil
}

func (p *Free) buildBody(ctx context.Context, articles []domain.Article, subject string, now time.Time, mon *guard.Monitor, log *slog.Logger) string {
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n")
	b.WriteString(now.Format("Monday, January 2, 2006"))
	b.WriteString("\n\n")

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, a.Title, a.URL)

		summary := ""
		if mon.AllowFetch() {
			if res := p.Extractor.Extract(ctx, a.URL); res.ExtractedOK {
				summary = curate.Summarize(res.Text, freeSummarySentences)
			}
		} else {
			log.Warn("fetch budget spent", "remaining_articles", len(articles)-i)
		}
		if summary != "" {
			fmt.Fprintf(&b, "   %s\n", summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Free) saveRun(ctx context.Context, subject string, itemCount int, log *slog.Logger) {
	if p.Runs == nil {
		return
	}
	run := domain.DigestRun{
		ID:        uuid.NewString(),
		Mode:      domain.ModeFree,
		Subject:   subject,
		ItemCount: itemCount,
		SentTo:    p.Recipient,
	}
	if err := p.Runs.SaveRun(ctx, run); err != nil {
		log.Warn("digest run not persisted", "error", err)
	}
}

func (p *Free) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
