package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
)

type fakeFeeds struct {
	byURL map[string][]domain.Article
	errs  map[string]error
}

func (f *fakeFeeds) Fetch(_ context.Context, feedURL string) ([]domain.Article, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	out := make([]domain.Article, len(f.byURL[feedURL]))
	copy(out, f.byURL[feedURL])
	return out, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	text  string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) domain.ExtractResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.text == "" {
		return domain.ExtractResult{URL: url}
	}
	return domain.ExtractResult{URL: url, Text: f.text, ExtractedOK: true}
}

type fakeCompleter struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, user string, _ int) (string, error) {
	f.mu.Lock()
	f.prompt = user
	f.mu.Unlock()
	return f.reply, f.err
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.Email
}

func (f *fakeMailer) Send(_ context.Context, e domain.Email) error {
	f.mu.Lock()
	f.sent = append(f.sent, e)
	f.mu.Unlock()
	return nil
}

type fakeRuns struct {
	mu   sync.Mutex
	runs []domain.DigestRun
}

func (f *fakeRuns) SaveRun(_ context.Context, run domain.DigestRun) error {
	f.mu.Lock()
	f.runs = append(f.runs, run)
	f.mu.Unlock()
	return nil
}

const validSingleShotReply = `Here you go:
` + "```json" + `
{"subject":"Morning digest","themes":["Tech"],"items":[
  {"title":"Big launch","url":"https://example.com/a","bullets":["Shipped at last"],"why_it_matters":"Market moves."}
],"html_body":""}
` + "```"

func singleShotFixture() (*SingleShot, *fakeMailer, *fakeRuns, *fakeCompleter) {
	feeds := &fakeFeeds{byURL: map[string][]domain.Article{
		"https://example.com/rss": {
			{Title: "Big launch", URL: "https://example.com/a?utm_source=feed", PublishedTS: time.Now().Unix()},
			{Title: "Big launch duplicate", URL: "https://example.com/a", PublishedTS: time.Now().Unix()},
			{Title: "Other story", URL: "https://example.com/b", PublishedTS: time.Now().Add(-48 * time.Hour).Unix()},
		},
	}}
	mailer := &fakeMailer{}
	runs := &fakeRuns{}
	completer := &fakeCompleter{reply: validSingleShotReply}
	p := &SingleShot{
		Feeds:      feeds,
		Extractor:  &fakeExtractor{text: "article body text"},
		Completer:  completer,
		Mailer:     mailer,
		Runs:       runs,
		FeedURLs:   []string{"https://example.com/rss"},
		Recipient:  "reader@example.com",
		MaxPerFeed: 5,
		Limits:     guard.DefaultLimits(),
	}
	return p, mailer, runs, completer
}

func TestSingleShotDeliversDigest(t *testing.T) {
	t.Parallel()

	p, mailer, runs, completer := singleShotFixture()
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	sent := mailer.sent[0]
	if sent.To != "reader@example.com" || sent.Subject != "Morning digest" || !sent.HTML {
		t.Fatalf("unexpected email: %+v", sent)
	}
	if !strings.Contains(sent.Body, "Big launch") {
		t.Fatal("expected rendered item in email body")
	}

	if len(runs.runs) != 1 {
		t.Fatalf("expected one persisted run, got %d", len(runs.runs))
	}
	run := runs.runs[0]
	if run.Mode != domain.ModeSingle || run.ItemCount != 1 || run.SentTo != "reader@example.com" {
		t.Fatalf("unexpected run record: %+v", run)
	}

	// Duplicate article must not reach the prompt twice.
	if strings.Count(completer.prompt, "https://example.com/a") != 1 {
		t.Fatalf("expected deduplicated prompt, got:\n%s", completer.prompt)
	}
	if !strings.Contains(completer.prompt, "article body text") {
		t.Fatal("expected extracted text in prompt")
	}
}

func TestSingleShotNoArticles(t *testing.T) {
	t.Parallel()

	p, _, _, _ := singleShotFixture()
	p.Feeds = &fakeFeeds{errs: map[string]error{"https://example.com/rss": fmt.Errorf("dns failure")}}

	err := p.Run(context.Background())
	if domain.KindOf(err) != domain.KindTransient {
		t.Fatalf("expected transient error when every feed fails, got %v", err)
	}
}

func TestSingleShotRejectsMalformedReply(t *testing.T) {
	t.Parallel()

	p, mailer, _, completer := singleShotFixture()
	completer.reply = "Sorry, I could not build a digest today."

	err := p.Run(context.Background())
	if domain.KindOf(err) != domain.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no email for malformed reply")
	}
}

func TestSingleShotInvalidDigest(t *testing.T) {
	t.Parallel()

	p, mailer, _, completer := singleShotFixture()
	completer.reply = `{"subject":"","themes":["Tech"],"items":[{"title":"x","url":"u","bullets":["b"],"why_it_matters":"w"}],"html_body":""}`

	err := p.Run(context.Background())
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for empty subject, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no email for invalid digest")
	}
}

func TestSingleShotStopsAtWallClock(t *testing.T) {
	t.Parallel()

	p, mailer, _, _ := singleShotFixture()

	var mu sync.Mutex
	current := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	p.Clock = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(200 * time.Second)
		return current
	}

	err := p.Run(context.Background())
	if domain.KindOf(err) != domain.KindExhausted {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no email once the wall clock is spent")
	}
}

func TestFreeDeliversPlainTextDigest(t *testing.T) {
	t.Parallel()

	feeds := &fakeFeeds{byURL: map[string][]domain.Article{
		"https://example.com/rss": {
			{Title: "Solar record", URL: "https://example.com/solar", PublishedTS: time.Now().Unix()},
		},
	}}
	mailer := &fakeMailer{}
	runs := &fakeRuns{}
	p := &Free{
		Feeds: feeds,
		Extractor: &fakeExtractor{text: "Solar output hit a national record on Saturday afternoon. " +
			"Grid operators said storage absorbed most of the surplus. " +
			"Prices went negative for two hours across the southern region. " +
			"Analysts expect the pattern to repeat through the summer months."},
		Mailer:    mailer,
		Runs:      runs,
		FeedURLs:  []string{"https://example.com/rss"},
		Recipient: "reader@example.com",
		Limits:    guard.DefaultLimits(),
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	sent := mailer.sent[0]
	if sent.HTML {
		t.Fatal("expected plain-text email")
	}
	if !strings.Contains(sent.Body, "Solar record") || !strings.Contains(sent.Body, "https://example.com/solar") {
		t.Fatalf("expected article in body, got:\n%s", sent.Body)
	}
	if len(runs.runs) != 1 || runs.runs[0].Mode != domain.ModeFree {
		t.Fatalf("expected persisted free run, got %+v", runs.runs)
	}
}

func TestSchedulerRunsOnceWithoutInterval(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	count := 0
	s := &Scheduler{Run: func(ctx context.Context) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one run, got %d", count)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 8)
	s := &Scheduler{
		Every: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	<-ran
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
