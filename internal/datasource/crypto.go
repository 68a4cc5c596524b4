package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// CryptoAsset is a CoinGecko asset id with its display name.
type CryptoAsset struct {
	ID   string
	Name string
}

// DefaultCryptoAssets are the tracked crypto assets.
var DefaultCryptoAssets = []CryptoAsset{
	{ID: "bitcoin", Name: "Bitcoin"},
	{ID: "ethereum", Name: "Ethereum"},
	{ID: "binancecoin", Name: "BNB"},
	{ID: "cardano", Name: "Cardano"},
	{ID: "solana", Name: "Solana"},
	{ID: "dogecoin", Name: "Dogecoin"},
	{ID: "polygon", Name: "Polygon"},
	{ID: "chainlink", Name: "Chainlink"},
}

// Crypto reads INR prices and 24h change from CoinGecko's simple price API.
type Crypto struct {
	client *Client
	url    string
	assets []CryptoAsset
	log    *slog.Logger
}

// NewCrypto creates a crypto source for DefaultCryptoAssets.
func NewCrypto(client *Client, url string, log *slog.Logger) *Crypto {
	return &Crypto{client: client, url: url, assets: DefaultCryptoAssets, log: log}
}

func (c *Crypto) Name() string              { return "crypto" }
func (c *Crypto) Category() models.Category { return models.CategoryCryptoPrices }

type geckoPrice struct {
	INR       *float64 `json:"inr"`
	Change24h float64  `json:"inr_24h_change"`
}

// Fetch returns every tracked asset present in the response, keyed by its
// uppercased id. Assets the provider omits are silently left out.
func (c *Crypto) Fetch(ctx context.Context, at time.Time) (models.Snapshot, error) {
	ids := make([]string, len(c.assets))
	for i, a := range c.assets {
		ids[i] = a.ID
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "inr")
	q.Set("include_24hr_change", "true")

	var resp map[string]geckoPrice
	if err := c.client.getJSON(ctx, c.url+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("crypto prices: %w", err)
	}

	out := models.CryptoPrices{}
	for _, a := range c.assets {
		p, ok := resp[a.ID]
		if !ok || p.INR == nil {
			continue
		}
		sym := strings.ToUpper(a.ID)
		out[sym] = models.CryptoPrice{
			Symbol:      sym,
			Name:        a.Name,
			Price:       *p.INR,
			ChangePct:   p.Change24h,
			LastUpdated: at,
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("crypto prices: %w", ErrNoData)
	}
	return out, nil
}
