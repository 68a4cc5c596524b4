package datasource

import (
	"log/slog"
	"time"

	"github.com/seenimoa/wealthvista/internal/config"
	"github.com/seenimoa/wealthvista/internal/infra"
)

// Sources holds one instance of every source, wired from configuration.
type Sources struct {
	Currency  *Currency
	Indices   *Indices
	Commodity *Commodity
	Crypto    *Crypto
	News      *News
	Movers    *Movers
}

// NewSources builds all sources from cfg. Index and movers share one Yahoo
// chart reader, and so one rate limiter.
func NewSources(cfg config.SourcesConfig, log *slog.Logger) *Sources {
	client := NewClient(cfg.HTTPTimeout, cfg.UserAgent, log)

	var limiter *infra.RateLimiter
	if cfg.YahooRPS > 0 {
		limiter = infra.NewRateLimiter(cfg.YahooRPS, time.Second/time.Duration(cfg.YahooRPS))
	}
	yahoo := NewYahoo(client, cfg.Yahoo.URL, limiter)

	newsOpts := NewsOptions{
		URL:      cfg.News.URL,
		APIKey:   cfg.News.APIKey,
		Country:  cfg.News.Country,
		Category: cfg.News.Category,
		PageSize: cfg.News.PageSize,
	}
	if cfg.News.RSSFallback {
		newsOpts.RSSFeeds = cfg.News.RSSFeeds
	}

	return &Sources{
		Currency:  NewCurrency(client, cfg.Currency.URL, log.With("source", "currency")),
		Indices:   NewIndices(yahoo, cfg.HTTPTimeout, log.With("source", "stock indices")),
		Commodity: NewCommodity(client, cfg.Metals.URL, cfg.AlphaVantage.URL, cfg.AlphaVantage.APIKey, cfg.USDINR, log.With("source", "commodities")),
		Crypto:    NewCrypto(client, cfg.CoinGecko.URL, log.With("source", "crypto")),
		News:      NewNews(client, newsOpts, log.With("source", "news")),
		Movers:    NewMovers(yahoo, cfg.MoversTimeout, log.With("source", "top movers")),
	}
}

// All returns the sources in category order.
func (s *Sources) All() []Source {
	return []Source{s.Currency, s.Indices, s.Commodity, s.Crypto, s.News, s.Movers}
}
