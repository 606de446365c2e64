package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"NewsDigest/internal/domain"
)

const (
	configPathEnv   = "NEWS_DIGEST_CONFIG"
	recipientEnv    = "EMAIL_RECIPIENT"
	databaseDSNEnv  = "DATABASE_DSN"
	smtpUsernameEnv = "SMTP_USERNAME"
	smtpPasswordEnv = "SMTP_PASSWORD"
)

// Config holds high-level settings required across the application.
type Config struct {
	Feeds     []string        `yaml:"feeds"`
	Email     EmailConfig     `yaml:"email"`
	AI        AIConfig        `yaml:"ai"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmailConfig describes digest delivery. SMTP credentials come from the
// process environment, never from the file.
type EmailConfig struct {
	Recipient string `yaml:"recipient"`
	SMTPHost  string `yaml:"smtpHost"`
	SMTPPort  string `yaml:"smtpPort"`
}

// AIConfig selects the pipeline mode and the LLM to call.
type AIConfig struct {
	Mode       string `yaml:"mode"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	MaxPerFeed int    `yaml:"maxPerFeed"`
}

// DatabaseConfig describes the optional digest-history store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines the recurring-run interval; empty disables it.
type SchedulerConfig struct {
	Every string `yaml:"every"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// SMTPCredentials reads the mailer credentials from the environment.
func SMTPCredentials() (username, password string) {
	return os.Getenv(smtpUsernameEnv), os.Getenv(smtpPasswordEnv)
}

// Validate surfaces configuration problems before any network work begins.
func (c Config) Validate() error {
	if len(c.Feeds) == 0 {
		return domain.E(domain.KindConfig, "no feeds configured; add feed URLs under 'feeds'")
	}
	if c.Email.Recipient == "" {
		return domain.E(domain.KindConfig,
			"no email recipient; set email.recipient or the %s environment variable", recipientEnv)
	}
	if c.AI.MaxPerFeed <= 0 {
		return domain.E(domain.KindConfig, "ai.maxPerFeed must be positive, got %d", c.AI.MaxPerFeed)
	}
	switch domain.PipelineMode(c.AI.Mode) {
	case domain.ModeAgent, domain.ModeSingle, domain.ModeFree:
	default:
		return domain.E(domain.KindConfig, "unknown ai.mode %q (want agent, single, or free)", c.AI.Mode)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(recipientEnv); v != "" {
		c.Email.Recipient = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Email.Recipient != "" {
		base.Email.Recipient = override.Email.Recipient
	}
	if override.Email.SMTPHost != "" {
		base.Email.SMTPHost = override.Email.SMTPHost
	}
	if override.Email.SMTPPort != "" {
		base.Email.SMTPPort = override.Email.SMTPPort
	}

	if override.AI.Mode != "" {
		base.AI.Mode = override.AI.Mode
	}
	if override.AI.Provider != "" {
		base.AI.Provider = override.AI.Provider
	}
	if override.AI.Model != "" {
		base.AI.Model = override.AI.Model
	}
	if override.AI.MaxPerFeed > 0 {
		base.AI.MaxPerFeed = override.AI.MaxPerFeed
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.Every != "" {
		base.Scheduler.Every = override.Scheduler.Every
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Feeds: nil,
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587",
		},
		AI: AIConfig{
			Mode:       string(domain.ModeAgent),
			MaxPerFeed: 5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
