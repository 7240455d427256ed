package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Universe sources.
const (
	UniverseStatic        = "static"
	UniverseStockAnalysis = "stockanalysis"
)

// Config holds all application configuration.
type Config struct {
	Screener struct {
		Window   int      `yaml:"window"`
		TopN     int      `yaml:"top_n"`
		Universe string   `yaml:"universe"`
		Symbols  []string `yaml:"symbols"`
		MaxPages int      `yaml:"max_pages"`
		Dedupe   *bool    `yaml:"dedupe"`
	} `yaml:"screener"`
	DataSource struct {
		BaseURL           string  `yaml:"base_url"`
		APIKey            string  `yaml:"api_key"`
		HistoryDays       int     `yaml:"history_days"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Concurrency       int     `yaml:"concurrency"`
	} `yaml:"data_source"`
	Output struct {
		SnapshotPath  string `yaml:"snapshot_path"`
		PrevRanksPath string `yaml:"prev_ranks_path"`
	} `yaml:"output"`
	Schedule struct {
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		Dir           string `yaml:"dir"`
		RotationSize  int    `yaml:"rotation_size_mb"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("PRICE_API_BASE_URL", &c.DataSource.BaseURL)
	setString("PRICE_API_KEY", &c.DataSource.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("CRON_WEEKLY", &c.Schedule.WeeklyCron)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("SNAPSHOT_PATH", &c.Output.SnapshotPath)
	setString("PREV_RANKS_PATH", &c.Output.PrevRanksPath)
	setString("UNIVERSE", &c.Screener.Universe)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Screener.Symbols = strings.Split(v, ",")
	}
	if err := setInt("RSL_WINDOW", &c.Screener.Window); err != nil {
		return err
	}
	if err := setInt("RSL_TOP_N", &c.Screener.TopN); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Screener.Window == 0 {
		c.Screener.Window = 130
	}
	if c.Screener.TopN == 0 {
		c.Screener.TopN = 20
	}
	if c.Screener.Universe == "" {
		if len(c.Screener.Symbols) > 0 {
			c.Screener.Universe = UniverseStatic
		} else {
			c.Screener.Universe = UniverseStockAnalysis
		}
	}
	if c.Screener.MaxPages == 0 {
		c.Screener.MaxPages = 5
	}
	if c.Screener.Dedupe == nil {
		dedupe := true
		c.Screener.Dedupe = &dedupe
	}
	if c.DataSource.HistoryDays == 0 {
		// Headroom over the window so short gaps don't disqualify a symbol.
		c.DataSource.HistoryDays = c.Screener.Window + 20
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 3
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.Output.SnapshotPath == "" {
		c.Output.SnapshotPath = "data/screener_data.json"
	}
	if c.Output.PrevRanksPath == "" {
		c.Output.PrevRanksPath = "data/prev_ranks.json"
	}
	if c.Schedule.WeeklyCron == "" {
		c.Schedule.WeeklyCron = "0 0 18 * * 5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/screener.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.RotationSize == 0 {
		c.Log.RotationSize = 50
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = 30
	}
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Screener.Window <= 0 {
		return fmt.Errorf("screener.window must be positive")
	}
	if c.Screener.TopN <= 0 {
		return fmt.Errorf("screener.top_n must be positive")
	}
	switch c.Screener.Universe {
	case UniverseStatic:
		if len(c.Screener.Symbols) == 0 {
			return fmt.Errorf("screener.symbols is required for the static universe")
		}
	case UniverseStockAnalysis:
		if c.Screener.MaxPages <= 0 {
			return fmt.Errorf("screener.max_pages must be positive")
		}
	default:
		return fmt.Errorf("screener.universe must be %q or %q, got %q",
			UniverseStatic, UniverseStockAnalysis, c.Screener.Universe)
	}
	if c.DataSource.HistoryDays < c.Screener.Window {
		return fmt.Errorf("data_source.history_days (%d) must cover screener.window (%d)",
			c.DataSource.HistoryDays, c.Screener.Window)
	}
	if c.DataSource.Concurrency <= 0 {
		return fmt.Errorf("data_source.concurrency must be positive")
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
