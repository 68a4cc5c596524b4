package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"ALPHA_VANTAGE_API_KEY", "NEWS_API_KEY",
		"WEALTHVISTA_SOURCES_ALPHA_VANTAGE_API_KEY", "WEALTHVISTA_SOURCES_NEWS_API_KEY",
		"WEALTHVISTA_REFRESH_INTERVAL",
	} {
		t.Setenv(e, "")
		os.Unsetenv(e)
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Refresh.Interval != 15*time.Minute {
		t.Errorf("Refresh.Interval: got %s, want 15m", cfg.Refresh.Interval)
	}
	if cfg.Refresh.CacheTTL != 15*time.Minute {
		t.Errorf("Refresh.CacheTTL: got %s, want 15m", cfg.Refresh.CacheTTL)
	}
	if !cfg.Refresh.RunOnStart {
		t.Error("Refresh.RunOnStart should be true by default")
	}
	if cfg.Sources.HTTPTimeout != 10*time.Second {
		t.Errorf("Sources.HTTPTimeout: got %s, want 10s", cfg.Sources.HTTPTimeout)
	}
	if cfg.Sources.MoversTimeout != 5*time.Second {
		t.Errorf("Sources.MoversTimeout: got %s, want 5s", cfg.Sources.MoversTimeout)
	}
	if cfg.Sources.USDINR != 83.0 {
		t.Errorf("Sources.USDINR: got %f, want 83", cfg.Sources.USDINR)
	}
	if cfg.Sources.AlphaVantage.APIKey != "demo" {
		t.Errorf("AlphaVantage.APIKey: got %q, want demo", cfg.Sources.AlphaVantage.APIKey)
	}
	if cfg.Sources.News.Country != "in" || cfg.Sources.News.Category != "business" {
		t.Errorf("News country/category: got %q/%q", cfg.Sources.News.Country, cfg.Sources.News.Category)
	}
	if cfg.Sources.News.PageSize != 10 {
		t.Errorf("News.PageSize: got %d, want 10", cfg.Sources.News.PageSize)
	}
	if len(cfg.Sources.News.RSSFeeds) != len(DefaultRSSFeeds) {
		t.Errorf("News.RSSFeeds: got %d feeds, want %d", len(cfg.Sources.News.RSSFeeds), len(DefaultRSSFeeds))
	}
	if cfg.API.Port != 5000 {
		t.Errorf("API.Port: got %d, want 5000", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte(`
refresh:
  interval: 5m
  cache_ttl: 20m
sources:
  http_timeout: 3s
  news:
    api_key: file-news-key-123
    rss_fallback: false
api:
  port: 9090
logging:
  format: json
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if cfg.Refresh.Interval != 5*time.Minute {
		t.Errorf("Refresh.Interval: got %s, want 5m", cfg.Refresh.Interval)
	}
	if cfg.Refresh.CacheTTL != 20*time.Minute {
		t.Errorf("Refresh.CacheTTL: got %s, want 20m", cfg.Refresh.CacheTTL)
	}
	if cfg.Sources.HTTPTimeout != 3*time.Second {
		t.Errorf("Sources.HTTPTimeout: got %s, want 3s", cfg.Sources.HTTPTimeout)
	}
	if cfg.Sources.News.APIKey != "file-news-key-123" {
		t.Errorf("News.APIKey: got %q", cfg.Sources.News.APIKey)
	}
	if cfg.Sources.News.RSSFallback {
		t.Error("News.RSSFallback should be false from file")
	}
	if cfg.API.Addr() != "0.0.0.0:9090" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}
	// Untouched keys keep defaults.
	if cfg.Sources.MoversTimeout != 5*time.Second {
		t.Errorf("Sources.MoversTimeout: got %s, want default 5s", cfg.Sources.MoversTimeout)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("refresh:\n  interval: 0s\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadFromFile(cfgPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "refresh.interval") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEALTHVISTA_REFRESH_INTERVAL", "1m")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-env-key-123456")
	t.Setenv("NEWS_API_KEY", "news-env-key-654321")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Refresh.Interval != time.Minute {
		t.Errorf("Refresh.Interval: got %s, want 1m", cfg.Refresh.Interval)
	}
	if cfg.Sources.AlphaVantage.APIKey != "av-env-key-123456" {
		t.Errorf("AlphaVantage.APIKey: got %q", cfg.Sources.AlphaVantage.APIKey)
	}
	if cfg.Sources.News.APIKey != "news-env-key-654321" {
		t.Errorf("News.APIKey: got %q", cfg.Sources.News.APIKey)
	}
}

// ── API keys ──

func TestMaskKey(t *testing.T) {
	if got := maskKey("short"); got != "***" {
		t.Errorf("maskKey(short) = %q, want ***", got)
	}
	if got := maskKey("abcdefghijkl"); got != "abc...jkl" {
		t.Errorf("maskKey(long) = %q, want abc...jkl", got)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	clearEnv(t)
	cfg := &Config{}
	cfg.Sources.AlphaVantage.APIKey = "demo"
	cfg.Sources.News.APIKey = "config-news-key-xyz"

	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if statuses[0].Source != KeySourceDefault {
		t.Errorf("Alpha Vantage source: got %q, want default", statuses[0].Source)
	}
	if statuses[1].Source != KeySourceConfig || statuses[1].Masked != "con...xyz" {
		t.Errorf("News status: got %+v", statuses[1])
	}

	t.Setenv("NEWS_API_KEY", "env-news-key-xyz")
	if got := CheckAPIKeys(cfg)[1].Source; got != KeySourceEnv {
		t.Errorf("News source with env set: got %q, want env", got)
	}

	cfg.Sources.AlphaVantage.APIKey = ""
	if got := CheckAPIKeys(cfg)[0]; got.IsSet || got.Source != KeySourceNone {
		t.Errorf("empty key status: got %+v", got)
	}
}
