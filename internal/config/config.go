package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "INVESTING_IDEAS_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	workersEnv        = "SCRAPER_WORKERS"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds high-level settings required across the application.
type Config struct {
	Site          SiteConfig         `yaml:"site"`
	HTTP          HTTPConfig         `yaml:"http"`
	Output        OutputConfig       `yaml:"output"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// SiteConfig describes the target site and the markup conventions it uses.
type SiteConfig struct {
	BaseURL          string `yaml:"baseUrl" validate:"required,url"`
	DiscoveryURL     string `yaml:"discoveryUrl" validate:"required,url"`
	IdeaPathPrefix   string `yaml:"ideaPathPrefix" validate:"required,startswith=/"`
	IdeaURLSuffix    string `yaml:"ideaUrlSuffix" validate:"required"`
	TitleSelector    string `yaml:"titleSelector" validate:"required"`
	StockPathPattern string `yaml:"stockPathPattern" validate:"required"`
	MarketCapMarker  string `yaml:"marketCapMarker" validate:"required"`
}

// HTTPConfig groups request identity and timeout settings.
type HTTPConfig struct {
	Timeout            time.Duration `yaml:"timeout" validate:"gt=0"`
	DiscoveryUserAgent string        `yaml:"discoveryUserAgent" validate:"required"`
	IdeaUserAgent      string        `yaml:"ideaUserAgent" validate:"required"`
	Accept             string        `yaml:"accept"`
	AcceptLanguage     string        `yaml:"acceptLanguage"`
}

// OutputConfig points at the JSON document written at the end of a run.
type OutputConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ScraperConfig bounds a single run.
type ScraperConfig struct {
	Workers    int           `yaml:"workers" validate:"min=1,max=32"`
	RunTimeout time.Duration `yaml:"runTimeout" validate:"gt=0"`
}

// DatabaseConfig describes the optional Postgres snapshot store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase" validate:"omitempty,url"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DiscoveryHeaders returns the request headers used for the discovery page.
func (h HTTPConfig) DiscoveryHeaders() map[string]string {
	headers := map[string]string{"User-Agent": h.DiscoveryUserAgent}
	if h.Accept != "" {
		headers["Accept"] = h.Accept
	}
	if h.AcceptLanguage != "" {
		headers["Accept-Language"] = h.AcceptLanguage
	}
	return headers
}

// IdeaHeaders returns the request headers used for idea pages.
func (h HTTPConfig) IdeaHeaders() map[string]string {
	return map[string]string{"User-Agent": h.IdeaUserAgent}
}

// Load reads YAML configuration (if present) and applies environment overrides.
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

// Validate checks struct constraints after defaults and overrides are applied.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(workersEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: invalid %s=%q, keeping %d", workersEnv, v, c.Scraper.Workers)
			return
		}
		c.Scraper.Workers = n
	}
}

func mergeConfig(base, override Config) Config {
	if override.Site.BaseURL != "" {
		base.Site.BaseURL = override.Site.BaseURL
	}
	if override.Site.DiscoveryURL != "" {
		base.Site.DiscoveryURL = override.Site.DiscoveryURL
	}
	if override.Site.IdeaPathPrefix != "" {
		base.Site.IdeaPathPrefix = override.Site.IdeaPathPrefix
	}
	if override.Site.IdeaURLSuffix != "" {
		base.Site.IdeaURLSuffix = override.Site.IdeaURLSuffix
	}
	if override.Site.TitleSelector != "" {
		base.Site.TitleSelector = override.Site.TitleSelector
	}
	if override.Site.StockPathPattern != "" {
		base.Site.StockPathPattern = override.Site.StockPathPattern
	}
	if override.Site.MarketCapMarker != "" {
		base.Site.MarketCapMarker = override.Site.MarketCapMarker
	}

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.DiscoveryUserAgent != "" {
		base.HTTP.DiscoveryUserAgent = override.HTTP.DiscoveryUserAgent
	}
	if override.HTTP.IdeaUserAgent != "" {
		base.HTTP.IdeaUserAgent = override.HTTP.IdeaUserAgent
	}
	if override.HTTP.Accept != "" {
		base.HTTP.Accept = override.HTTP.Accept
	}
	if override.HTTP.AcceptLanguage != "" {
		base.HTTP.AcceptLanguage = override.HTTP.AcceptLanguage
	}

	if override.Output.Path != "" {
		base.Output = override.Output
	}

	if override.Scraper.Workers != 0 {
		base.Scraper.Workers = override.Scraper.Workers
	}
	if override.Scraper.RunTimeout != 0 {
		base.Scraper.RunTimeout = override.Scraper.RunTimeout
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Site: SiteConfig{
			BaseURL:          "https://simplywall.st",
			DiscoveryURL:     "https://simplywall.st/discover/investing-ideas",
			IdeaPathPrefix:   "/discover/investing-ideas/",
			IdeaURLSuffix:    "/global",
			TitleSelector:    "p.font-serif",
			StockPathPattern: "/stocks/",
			MarketCapMarker:  "Market Cap:",
		},
		HTTP: HTTPConfig{
			Timeout:            30 * time.Second,
			DiscoveryUserAgent: "Mozilla/5.0",
			IdeaUserAgent:      browserUserAgent,
			Accept:             "text/html,application/xhtml+xml",
			AcceptLanguage:     "en-US,en;q=0.9",
		},
		Output:  OutputConfig{Path: "static_data/investing_ideas.json"},
		Scraper: ScraperConfig{Workers: 1, RunTimeout: 30 * time.Minute},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
