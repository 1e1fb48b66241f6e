package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"OptionsSentinel/internal/strategy"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	App struct {
		LogLevel    string `yaml:"log_level"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"app"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string        `yaml:"provider"` // yahoo, rest or mock
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		Range        string        `yaml:"range"`
		Interval     string        `yaml:"interval"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		HistoryTTL   time.Duration `yaml:"history_ttl"`
		OptionsTTL   time.Duration `yaml:"options_ttl"`
		EarningsTTL  time.Duration `yaml:"earnings_ttl"`
		RateLimit    float64       `yaml:"rate_limit"` // requests per second
	} `yaml:"data_source"`
	Policy   strategy.Policy `yaml:"policy"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		CloseCron   string `yaml:"close_cron"`
	} `yaml:"schedule"`
	Storage struct {
		SQLitePath    string `yaml:"sqlite_path"`
		SignalLogCSV  string `yaml:"signal_log_csv"`
		WatchlistFile string `yaml:"watchlist_file"`
	} `yaml:"storage"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then .env, then environment variable
// overrides, then fills defaults. A missing YAML or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{Policy: strategy.DefaultPolicy}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	override("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	override("DATA_PROVIDER", &cfg.DataSource.Provider)
	override("DATA_BASE_URL", &cfg.DataSource.BaseURL)
	override("DATA_API_KEY", &cfg.DataSource.APIKey)
	override("HTTPS_PROXY", &cfg.Proxy)
	override("SQLITE_PATH", &cfg.Storage.SQLitePath)
	override("SIGNAL_LOG_CSV", &cfg.Storage.SignalLogCSV)
	override("LOG_LEVEL", &cfg.App.LogLevel)
	override("METRICS_ADDR", &cfg.App.MetricsAddr)
	override("CRON_REFRESH", &cfg.Schedule.RefreshCron)

	// Defaults
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Range == "" {
		cfg.DataSource.Range = "5d"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1m"
	}
	if cfg.DataSource.FetchTimeout == 0 {
		cfg.DataSource.FetchTimeout = 10 * time.Second
	}
	if cfg.DataSource.HistoryTTL == 0 {
		cfg.DataSource.HistoryTTL = time.Minute
	}
	if cfg.DataSource.OptionsTTL == 0 {
		cfg.DataSource.OptionsTTL = 5 * time.Minute
	}
	if cfg.DataSource.EarningsTTL == 0 {
		cfg.DataSource.EarningsTTL = time.Hour
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 2
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "CRON_TZ=America/New_York 0 * 9-16 * * 1-5"
	}
	if cfg.Schedule.CloseCron == "" {
		cfg.Schedule.CloseCron = "CRON_TZ=America/New_York 0 5 16 * * 1-5"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/options_sentinel.db"
	}
	if cfg.Storage.WatchlistFile == "" {
		cfg.Storage.WatchlistFile = "data/watchlist.json"
	}

	return cfg, nil
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.DataSource.FetchTimeout <= 0 {
		return fmt.Errorf("data_source.fetch_timeout must be positive")
	}
	if c.DataSource.HistoryTTL <= 0 || c.DataSource.OptionsTTL <= 0 || c.DataSource.EarningsTTL <= 0 {
		return fmt.Errorf("data_source ttls must be positive")
	}
	if c.DataSource.RateLimit <= 0 {
		return fmt.Errorf("data_source.rate_limit must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return c.Policy.Validate()
}
