package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Scan.ScreenerPeriod != "1mo" || cfg.Scan.RecommendPeriod != "3mo" {
		t.Errorf("unexpected periods %s / %s", cfg.Scan.ScreenerPeriod, cfg.Scan.RecommendPeriod)
	}
	if cfg.DataSource.ExchangeSuffix != ".NS" {
		t.Errorf("expected .NS suffix, got %s", cfg.DataSource.ExchangeSuffix)
	}
	if cfg.News.MaxItems != 5 {
		t.Errorf("expected 5 news items, got %d", cfg.News.MaxItems)
	}
	if cfg.TelegramEnabled() {
		t.Error("expected telegram disabled without a token")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
scan:
  concurrency: 8
  min_confidence: Medium
telegram:
  bot_token: "from-yaml"
  chat_id: 100
database:
  driver: postgres
  dsn: "postgres://localhost/stocks"
`)
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("SCAN_CONCURRENCY", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Telegram.ChatID != -100123 {
		t.Errorf("expected env chat id, got %d", cfg.Telegram.ChatID)
	}
	if cfg.Scan.Concurrency != 2 {
		t.Errorf("expected env concurrency 2, got %d", cfg.Scan.Concurrency)
	}
	if cfg.Scan.MinConfidence != "Medium" || cfg.Database.Driver != "postgres" {
		t.Errorf("unexpected yaml values %+v", cfg.Scan)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for non-numeric chat id")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x"; c.Telegram.ChatID = 0 }},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"bad confidence", func(c *Config) { c.Scan.MinConfidence = "Certain" }},
		{"bad recommend period", func(c *Config) { c.Scan.RecommendPeriod = "10y" }},
		{"bad screener period", func(c *Config) { c.Scan.ScreenerPeriod = "1d" }},
		{"bad recommend interval", func(c *Config) { c.Scan.RecommendInterval = "1h" }},
		{"bad screener interval", func(c *Config) { c.Scan.ScreenerInterval = "daily" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
