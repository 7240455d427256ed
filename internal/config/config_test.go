package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 130, cfg.Screener.Window)
	assert.Equal(t, 20, cfg.Screener.TopN)
	assert.Equal(t, UniverseStockAnalysis, cfg.Screener.Universe)
	assert.True(t, *cfg.Screener.Dedupe)
	assert.Equal(t, 150, cfg.DataSource.HistoryDays)
	assert.Equal(t, "data/prev_ranks.json", cfg.Output.PrevRanksPath)
	assert.Equal(t, "0 0 18 * * 5", cfg.Schedule.WeeklyCron)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
screener:
  window: 60
  top_n: 10
  symbols: [ABB.ST, SAAB-B.ST]
  dedupe: false
data_source:
  requests_per_second: 1.5
output:
  snapshot_path: out/snap.json
`)
	t.Setenv("RSL_TOP_N", "5")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Screener.Window)
	assert.Equal(t, 5, cfg.Screener.TopN)
	assert.Equal(t, UniverseStatic, cfg.Screener.Universe)
	assert.Equal(t, []string{"ABB.ST", "SAAB-B.ST"}, cfg.Screener.Symbols)
	assert.False(t, *cfg.Screener.Dedupe)
	assert.Equal(t, 1.5, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, 80, cfg.DataSource.HistoryDays)
	assert.Equal(t, "out/snap.json", cfg.Output.SnapshotPath)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadInput(t *testing.T) {
	_, err := Load(writeConfig(t, "screener: [oops"))
	assert.Error(t, err)

	t.Setenv("RSL_WINDOW", "many")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero window", func(c *Config) { c.Screener.Window = 0 }},
		{"negative top n", func(c *Config) { c.Screener.TopN = -1 }},
		{"unknown universe", func(c *Config) { c.Screener.Universe = "nyse" }},
		{"static without symbols", func(c *Config) { c.Screener.Universe = UniverseStatic }},
		{"history shorter than window", func(c *Config) { c.DataSource.HistoryDays = 10 }},
		{"zero concurrency", func(c *Config) { c.DataSource.Concurrency = 0 }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
