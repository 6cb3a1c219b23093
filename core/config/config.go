package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN" validate:"required"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// RateLimitConfig throttles inbound updates per user at the transport edge.
// This is independent from the post-submission cooldown, which is relay policy.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// RelayConfig carries the owner inbox policy knobs.
type RelayConfig struct {
	// OwnerID is the single privileged Telegram account.
	OwnerID int64 `yaml:"owner_id" envconfig:"RELAY_OWNER_ID" validate:"required"`
	// OwnerUsername is shown to users in welcome and countdown copy.
	OwnerUsername       string `yaml:"owner_username" envconfig:"RELAY_OWNER_USERNAME" validate:"required,startswith=@"`
	CooldownSeconds     int    `yaml:"cooldown_seconds" envconfig:"RELAY_COOLDOWN_SECONDS" validate:"min=0"`
	ThreadWindowMinutes int    `yaml:"thread_window_minutes" envconfig:"RELAY_THREAD_WINDOW_MINUTES" validate:"min=1"`
	PageSize            int    `yaml:"page_size" envconfig:"RELAY_PAGE_SIZE" validate:"min=1,max=50"`
	SearchLimit         int    `yaml:"search_limit" envconfig:"RELAY_SEARCH_LIMIT" validate:"min=1,max=50"`
}

// Cooldown returns the post-submission cooldown as a duration.
func (r RelayConfig) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// ThreadWindow returns the thread continuation window as a duration.
func (r RelayConfig) ThreadWindow() time.Duration {
	return time.Duration(r.ThreadWindowMinutes) * time.Minute
}

// HealthConfig configures the HTTP health/metrics listener.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// DatabaseConfig holds database connection settings. It lives here, at the
// bottom of the layering, so core/database can log through core/logger
// without pulling config back in.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// Config aggregates all application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Relay     RelayConfig     `yaml:"relay"`
	Health    HealthConfig    `yaml:"health"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Normalize applies defaults and performs basic validation of required fields.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if cfg.Relay.CooldownSeconds == 0 {
		cfg.Relay.CooldownSeconds = 10
	}
	if cfg.Relay.ThreadWindowMinutes == 0 {
		cfg.Relay.ThreadWindowMinutes = 15
	}
	if cfg.Relay.PageSize == 0 {
		cfg.Relay.PageSize = 20
	}
	if cfg.Relay.SearchLimit == 0 {
		cfg.Relay.SearchLimit = 10
	}
	if strings.TrimSpace(cfg.Health.Listen) == "" {
		cfg.Health.Listen = ":8080"
	}
	return nil
}
