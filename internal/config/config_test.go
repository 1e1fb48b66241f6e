package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionsSentinel/internal/strategy"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_PROVIDER", "DATA_BASE_URL", "DATA_API_KEY",
		"HTTPS_PROXY", "SQLITE_PATH", "SIGNAL_LOG_CSV", "LOG_LEVEL", "METRICS_ADDR", "CRON_REFRESH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "5d", cfg.DataSource.Range)
	assert.Equal(t, "1m", cfg.DataSource.Interval)
	assert.Equal(t, 10*time.Second, cfg.DataSource.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.DataSource.HistoryTTL)
	assert.Equal(t, 5*time.Minute, cfg.DataSource.OptionsTTL)
	assert.Equal(t, time.Hour, cfg.DataSource.EarningsTTL)
	assert.Equal(t, strategy.DefaultPolicy, cfg.Policy)
	assert.Contains(t, cfg.Schedule.RefreshCron, "America/New_York")
	assert.Equal(t, "data/watchlist.json", cfg.Storage.WatchlistFile)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndPartialPolicy(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9102", cfg.App.MetricsAddr)
	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 3*time.Second, cfg.DataSource.FetchTimeout)
	assert.Equal(t, 2*time.Minute, cfg.DataSource.OptionsTTL)
	assert.Equal(t, time.Minute, cfg.DataSource.HistoryTTL)

	assert.Equal(t, 30.0, cfg.Policy.RSIOversold)
	assert.Equal(t, 70.0, cfg.Policy.RSIOverbought)
	assert.Equal(t, 15, cfg.Policy.RSIPoints)
	assert.Equal(t, 5, cfg.Policy.IVNudge)
	assert.Equal(t, strategy.DefaultPolicy.BaseScore, cfg.Policy.BaseScore)
	assert.Equal(t, strategy.DefaultPolicy.StrongScore, cfg.Policy.StrongScore)

	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("DATA_PROVIDER", "mock")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CRON_REFRESH", "@every 30s")

	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "mock", cfg.DataSource.Provider)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "@every 30s", cfg.Schedule.RefreshCron)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.DataSource.Provider = "bloomberg"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DataSource.Provider = "rest"
	assert.ErrorContains(t, cfg.Validate(), "base_url")

	cfg = base()
	cfg.DataSource.HistoryTTL = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Telegram.BotToken = "only-token"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Policy.ModerateScore = 90
	assert.ErrorContains(t, cfg.Validate(), "moderate_score")
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, PathFromEnv())
	t.Setenv("CONFIG_PATH", "/etc/sentinel.yaml")
	assert.Equal(t, "/etc/sentinel.yaml", PathFromEnv())
}
