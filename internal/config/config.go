// Package config handles configuration loading for WealthVista.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// RefreshConfig controls the fetch cycle cadence and cache lifetime.
type RefreshConfig struct {
	Interval   time.Duration `mapstructure:"interval"     yaml:"interval"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"    yaml:"cache_ttl"`
	RunOnStart bool          `mapstructure:"run_on_start" yaml:"run_on_start"`
}

// SourcesConfig holds upstream provider endpoints and credentials.
type SourcesConfig struct {
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"   yaml:"http_timeout"`
	MoversTimeout time.Duration `mapstructure:"movers_timeout" yaml:"movers_timeout"`
	UserAgent     string        `mapstructure:"user_agent"     yaml:"user_agent"`
	USDINR        float64       `mapstructure:"usd_inr"        yaml:"usd_inr"` // fixed conversion for USD-quoted commodities
	YahooRPS      int           `mapstructure:"yahoo_rps"      yaml:"yahoo_rps"`

	Currency     EndpointConfig `mapstructure:"currency"      yaml:"currency"`
	Yahoo        EndpointConfig `mapstructure:"yahoo"         yaml:"yahoo"`
	Metals       EndpointConfig `mapstructure:"metals"        yaml:"metals"`
	AlphaVantage EndpointConfig `mapstructure:"alpha_vantage" yaml:"alpha_vantage"`
	CoinGecko    EndpointConfig `mapstructure:"coingecko"     yaml:"coingecko"`
	News         NewsConfig     `mapstructure:"news"          yaml:"news"`
}

// EndpointConfig is a base URL plus an optional API key.
type EndpointConfig struct {
	URL    string `mapstructure:"url"     yaml:"url"     json:"url"`
	APIKey string `mapstructure:"api_key" yaml:"api_key" json:"-"`
}

// NewsConfig holds the headlines endpoint and its RSS fallback.
type NewsConfig struct {
	URL         string   `mapstructure:"url"          yaml:"url"`
	APIKey      string   `mapstructure:"api_key"      yaml:"api_key"      json:"-"`
	Country     string   `mapstructure:"country"      yaml:"country"`
	Category    string   `mapstructure:"category"     yaml:"category"`
	PageSize    int      `mapstructure:"page_size"    yaml:"page_size"`
	RSSFallback bool     `mapstructure:"rss_fallback" yaml:"rss_fallback"`
	RSSFeeds    []string `mapstructure:"rss_feeds"    yaml:"rss_feeds"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Addr returns the host:port the API server listens on.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.wealthvista/config.yaml (home directory)
//  3. /etc/wealthvista/config.yaml (system)
//
// Environment variables override config file values.
// Format: WEALTHVISTA_<SECTION>_<KEY>, e.g., WEALTHVISTA_REFRESH_INTERVAL
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wealthvista"))
	v.AddConfigPath("/etc/wealthvista")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("WEALTHVISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the refresh loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Refresh.Interval <= 0 {
		errs = append(errs, fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval))
	}
	if c.Refresh.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("refresh.cache_ttl must be positive, got %s", c.Refresh.CacheTTL))
	}
	if c.Sources.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sources.http_timeout must be positive, got %s", c.Sources.HTTPTimeout))
	}
	if c.Sources.MoversTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sources.movers_timeout must be positive, got %s", c.Sources.MoversTimeout))
	}
	if c.Sources.USDINR <= 0 {
		errs = append(errs, fmt.Errorf("sources.usd_inr must be positive, got %g", c.Sources.USDINR))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Refresh defaults
	v.SetDefault("refresh.interval", "15m")
	v.SetDefault("refresh.cache_ttl", "15m")
	v.SetDefault("refresh.run_on_start", true)

	// Source defaults
	v.SetDefault("sources.http_timeout", "10s")
	v.SetDefault("sources.movers_timeout", "5s")
	v.SetDefault("sources.user_agent", DefaultUserAgent)
	v.SetDefault("sources.usd_inr", 83.0)
	v.SetDefault("sources.yahoo_rps", 5)
	v.SetDefault("sources.currency.url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("sources.yahoo.url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("sources.metals.url", "https://api.metals.live/v1/spot")
	v.SetDefault("sources.alpha_vantage.url", "https://www.alphavantage.co/query")
	v.SetDefault("sources.alpha_vantage.api_key", "demo")
	v.SetDefault("sources.coingecko.url", "https://api.coingecko.com/api/v3/simple/price")
	v.SetDefault("sources.news.url", "https://newsapi.org/v2/top-headlines")
	v.SetDefault("sources.news.api_key", "demo")
	v.SetDefault("sources.news.country", "in")
	v.SetDefault("sources.news.category", "business")
	v.SetDefault("sources.news.page_size", 10)
	v.SetDefault("sources.news.rss_fallback", true)
	v.SetDefault("sources.news.rss_feeds", DefaultRSSFeeds)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// DefaultUserAgent is sent on every outbound provider request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultRSSFeeds are Indian business feeds read when the headlines API fails.
var DefaultRSSFeeds = []string{
	"https://www.moneycontrol.com/rss/latestnews.xml",
	"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	"https://www.livemint.com/rss/markets",
	"https://www.business-standard.com/rss/markets-106.rss",
}

// overrideFromEnv reads provider keys from their conventional variable names,
// which take precedence over the prefixed form.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		cfg.Sources.AlphaVantage.APIKey = key
	}
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		cfg.Sources.News.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
