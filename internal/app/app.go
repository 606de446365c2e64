package app

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"NewsDigest/internal/agent"
	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
	"NewsDigest/internal/infrastructure/email"
	"NewsDigest/internal/infrastructure/extract"
	"NewsDigest/internal/infrastructure/feed"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/usecase"

	"github.com/google/uuid"
)

const (
	providerEnv       = "LLM_PROVIDER"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	openAIKeyEnv      = "OPENAI_API_KEY"
	anthropicModelEnv = "ANTHROPIC_MODEL"
	openAIModelEnv    = "OPENAI_MODEL"
)

// App wires configuration into adapters and runs the digest on its schedule.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	feeds     ports.FeedSource
	extractor ports.Extractor
	mailer    ports.Mailer
	runs      ports.RunRepository
	db        *sql.DB

	toolCaller ports.ToolCaller
	completer  ports.Completer
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		feeds:     feed.NewSource(nil, logging.WithComponent(logger, "feed")),
		extractor: extract.NewReadabilityExtractor(nil, logging.WithComponent(logger, "extract")),
	}

	username, password := config.SMTPCredentials()
	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		return nil, domain.E(domain.KindConfig, "invalid email.smtpPort %q", cfg.Email.SMTPPort)
	}
	a.mailer = email.NewSMTPMailer(cfg.Email.SMTPHost, smtpPort, username, password,
		logging.WithComponent(logger, "email"))

	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, domain.E(domain.KindConfig, "open database: %v", err)
		}
		a.db = db
		a.runs = storage.NewPostgresRepository(db)
	}

	a.initLLM()
	return a, nil
}

// initLLM resolves the provider and model and builds the matching clients.
// No usable provider leaves both clients nil; the run falls back to the
// free pipeline.
func (a *App) initLLM() {
	anthropicKey := os.Getenv(anthropicKeyEnv)
	openAIKey := os.Getenv(openAIKeyEnv)

	provider, err := config.ResolveProvider(
		os.Getenv(providerEnv), a.cfg.AI.Provider, anthropicKey != "", openAIKey != "")
	if err != nil {
		a.logger.Warn("no LLM available", "error", err)
		return
	}

	switch provider {
	case config.ProviderAnthropic:
		model := config.Resolve(os.Getenv(anthropicModelEnv), a.cfg.AI.Model, config.DefaultModel(provider))
		client := llm.NewAnthropicClient(anthropicKey, model)
		a.toolCaller = client
		a.completer = client
		a.logger.Info("llm configured", "provider", provider, "model", model)
	case config.ProviderOpenAI:
		model := config.Resolve(os.Getenv(openAIModelEnv), a.cfg.AI.Model, config.DefaultModel(provider))
		a.completer = llm.NewOpenAIClient(openAIKey, model)
		a.logger.Info("llm configured", "provider", provider, "model", model)
	}
}

// Run executes the digest once, or on the configured interval when
// scheduler.every is set.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.db != nil {
		if repo, ok := a.runs.(*storage.PostgresRepository); ok {
			if err := repo.Migrate(ctx); err != nil {
				a.logger.Warn("run history unavailable", "error", err)
				a.runs = nil
			}
		}
	}

	every, err := a.interval()
	if err != nil {
		return err
	}

	sched := &usecase.Scheduler{
		Every:  every,
		Run:    a.runDigest,
		Logger: a.logger,
	}
	return sched.Start(ctx)
}

// runDigest tries the configured pipeline and degrades through the chain
// agent -> single -> free, attempting each at most once.
func (a *App) runDigest(ctx context.Context) error {
	mode := domain.PipelineMode(a.cfg.AI.Mode)

	if mode == domain.ModeAgent {
		if a.toolCaller == nil {
			a.logger.Warn("agent mode needs an anthropic client; falling back", "next", domain.ModeSingle)
		} else if err := a.runAgent(ctx); err != nil {
			a.logger.Error("agent pipeline failed; falling back", "next", domain.ModeSingle, "error", err)
		} else {
			return nil
		}
		mode = domain.ModeSingle
	}

	if mode == domain.ModeSingle {
		if a.completer == nil {
			a.logger.Warn("single mode needs an LLM client; falling back", "next", domain.ModeFree)
		} else if err := a.runSingle(ctx); err != nil {
			a.logger.Error("single-shot pipeline failed; falling back", "next", domain.ModeFree, "error", err)
		} else {
			return nil
		}
	}

	return a.runFree(ctx)
}

func (a *App) runAgent(ctx context.Context) error {
	ctl, err := agent.NewController(agent.ControllerDeps{
		LLM: a.toolCaller,
		Tools: &agent.Toolbox{
			Feeds:      a.feeds,
			Extractor:  a.extractor,
			MaxPerFeed: a.cfg.AI.MaxPerFeed,
			Logger:     a.logger,
		},
		Limits:    guard.DefaultLimits(),
		Recipient: a.cfg.Email.Recipient,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	out, err := ctl.Run(ctx, a.cfg.Feeds)
	if err != nil {
		return err
	}

	if err := a.mailer.Send(ctx, domain.Email{
		To:      a.cfg.Email.Recipient,
		Subject: out.Subject,
		Body:    out.HTMLBody,
		HTML:    true,
	}); err != nil {
		return err
	}

	a.saveRun(ctx, domain.DigestRun{
		ID:        uuid.NewString(),
		Mode:      domain.ModeAgent,
		Subject:   out.Subject,
		Themes:    out.Themes,
		ItemCount: len(out.Items),
		SentTo:    a.cfg.Email.Recipient,
	})
	return nil
}

func (a *App) runSingle(ctx context.Context) error {
	p := &usecase.SingleShot{
		Feeds:      a.feeds,
		Extractor:  a.extractor,
		Completer:  a.completer,
		Mailer:     a.mailer,
		Runs:       a.runs,
		FeedURLs:   a.cfg.Feeds,
		Recipient:  a.cfg.Email.Recipient,
		MaxPerFeed: a.cfg.AI.MaxPerFeed,
		Limits:     guard.DefaultLimits(),
		Logger:     a.logger,
	}
	return p.Run(ctx)
}

func (a *App) runFree(ctx context.Context) error {
	p := &usecase.Free{
		Feeds:      a.feeds,
		Extractor:  a.extractor,
		Mailer:     a.mailer,
		Runs:       a.runs,
		FeedURLs:   a.cfg.Feeds,
		Recipient:  a.cfg.Email.Recipient,
		MaxPerFeed: a.cfg.AI.MaxPerFeed,
		Limits:     guard.DefaultLimits(),
		Logger:     a.logger,
	}
	return p.Run(ctx)
}

func (a *App) saveRun(ctx context.Context, run domain.DigestRun) {
	if a.runs == nil {
		return
	}
	if err := a.runs.SaveRun(ctx, run); err != nil {
		a.logger.Warn("digest run not persisted", "error", err)
	}
}

func (a *App) interval() (time.Duration, error) {
	raw := a.cfg.Scheduler.Every
	if raw == "" {
		return 0, nil
	}
	every, err := time.ParseDuration(raw)
	if err != nil {
		return 0, domain.E(domain.KindConfig, "invalid scheduler.every %q: %v", raw, err)
	}
	return every, nil
}

func (a *App) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
