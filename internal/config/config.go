package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"StockSentinel/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	SymbolsFile string `yaml:"symbols_file"`
	DataSource  struct {
		BaseURL           string `yaml:"base_url"`
		ExchangeSuffix    string `yaml:"exchange_suffix"`
		RequestsPerSecond int    `yaml:"requests_per_second"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Scan struct {
		Concurrency       int    `yaml:"concurrency"`
		ScreenerPeriod    string `yaml:"screener_period"`
		ScreenerInterval  string `yaml:"screener_interval"`
		RecommendPeriod   string `yaml:"recommend_period"`
		RecommendInterval string `yaml:"recommend_interval"`
		MinConfidence     string `yaml:"min_confidence"`
		Cron              string `yaml:"cron"`
		ExchangeMIC       string `yaml:"exchange_mic"`
		TopPicks          int    `yaml:"top_picks"`
	} `yaml:"scan"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
	News struct {
		BaseURL  string `yaml:"base_url"`
		MaxItems int    `yaml:"max_items"`
	} `yaml:"news"`
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
	Proxy     string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
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
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.SymbolsFile, "SYMBOLS_FILE")
	setString(&c.DataSource.BaseURL, "DATA_SOURCE_URL")
	setString(&c.DataSource.ExchangeSuffix, "EXCHANGE_SUFFIX")
	setString(&c.Scan.MinConfidence, "MIN_CONFIDENCE")
	setString(&c.Scan.Cron, "CRON_SCAN")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.News.BaseURL, "NEWS_BASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Proxy, "HTTPS_PROXY")

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_CONCURRENCY: %w", err)
		}
		c.Scan.Concurrency = n
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.LogPretty = v == "true" || v == "1"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.SymbolsFile == "" {
		c.SymbolsFile = "data/symbols.csv"
	}
	if c.DataSource.ExchangeSuffix == "" {
		c.DataSource.ExchangeSuffix = ".NS"
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 15
	}
	if c.Scan.Concurrency == 0 {
		c.Scan.Concurrency = 4
	}
	if c.Scan.ScreenerPeriod == "" {
		c.Scan.ScreenerPeriod = "1mo"
	}
	if c.Scan.ScreenerInterval == "" {
		c.Scan.ScreenerInterval = "1d"
	}
	if c.Scan.RecommendPeriod == "" {
		c.Scan.RecommendPeriod = "3mo"
	}
	if c.Scan.RecommendInterval == "" {
		c.Scan.RecommendInterval = "1d"
	}
	if c.Scan.MinConfidence == "" {
		c.Scan.MinConfidence = "Low"
	}
	if c.Scan.Cron == "" {
		c.Scan.Cron = "0 30 16 * * 1-5"
	}
	if c.Scan.ExchangeMIC == "" {
		c.Scan.ExchangeMIC = "xnse"
	}
	if c.Scan.TopPicks == 0 {
		c.Scan.TopPicks = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/stock_sentinel.db"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 86400
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.TelegramEnabled() && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when a bot token is set")
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("scan.concurrency must be positive")
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	for key, v := range map[string]string{
		"scan.screener_period":  c.Scan.ScreenerPeriod,
		"scan.recommend_period": c.Scan.RecommendPeriod,
	} {
		if _, err := model.ParsePeriod(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	for key, v := range map[string]string{
		"scan.screener_interval":  c.Scan.ScreenerInterval,
		"scan.recommend_interval": c.Scan.RecommendInterval,
	} {
		if _, err := model.ParseInterval(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	switch c.Scan.MinConfidence {
	case "Low", "Medium", "High":
	default:
		return fmt.Errorf("scan.min_confidence must be Low, Medium or High")
	}
	return nil
}
