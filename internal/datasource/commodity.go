package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// troyOunceGrams converts a per-troy-ounce price to per-gram.
const troyOunceGrams = 31.1035

// metalKeys maps the spot feed's metal names to commodity keys and display names.
var metalKeys = map[string][2]string{
	"gold":   {"GOLD", "Gold"},
	"silver": {"SILVER", "Silver"},
}

// Commodity combines spot metals with WTI crude oil, converting both from
// USD to INR at a fixed rate. Change percent is always zero: neither
// upstream feed reports a change.
type Commodity struct {
	client    *Client
	metalsURL string
	oilURL    string
	apiKey    string
	usdINR    float64
	log       *slog.Logger
}

// NewCommodity creates a commodity source. usdINR is the fixed USD to INR
// rate used for all conversions.
func NewCommodity(client *Client, metalsURL, oilURL, apiKey string, usdINR float64, log *slog.Logger) *Commodity {
	return &Commodity{
		client:    client,
		metalsURL: metalsURL,
		oilURL:    oilURL,
		apiKey:    apiKey,
		usdINR:    usdINR,
		log:       log,
	}
}

func (c *Commodity) Name() string              { return "commodities" }
func (c *Commodity) Category() models.Category { return models.CategoryCommodityPrices }

type metalQuote struct {
	Metal string  `json:"metal"`
	Price float64 `json:"price"`
}

type avSeries struct {
	Name string `json:"name"`
	Data []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
}

// Fetch returns whatever of gold, silver, and crude oil could be read. It
// fails only when both upstream feeds produced nothing.
func (c *Commodity) Fetch(ctx context.Context, at time.Time) (models.Snapshot, error) {
	out := models.CommodityPrices{}

	metalsErr := c.fetchMetals(ctx, at, out)
	if metalsErr != nil {
		c.log.Warn("metals fetch failed", "error", metalsErr)
	}
	oilErr := c.fetchCrude(ctx, at, out)
	if oilErr != nil {
		c.log.Warn("crude oil fetch failed", "error", oilErr)
	}

	if len(out) == 0 {
		if err := errors.Join(metalsErr, oilErr); err != nil {
			return nil, fmt.Errorf("commodity prices: %w", err)
		}
		return nil, fmt.Errorf("commodity prices: %w", ErrNoData)
	}
	return out, nil
}

func (c *Commodity) fetchMetals(ctx context.Context, at time.Time, out models.CommodityPrices) error {
	var quotes []metalQuote
	if err := c.client.getJSON(ctx, c.metalsURL, &quotes); err != nil {
		return err
	}
	for _, q := range quotes {
		key, ok := metalKeys[q.Metal]
		if !ok || q.Price <= 0 {
			continue
		}
		out[key[0]] = models.CommodityPrice{
			Name:        key[1],
			Symbol:      key[0],
			Price:       q.Price * c.usdINR / troyOunceGrams,
			Unit:        "INR/gram",
			LastUpdated: at,
		}
	}
	return nil
}

func (c *Commodity) fetchCrude(ctx context.Context, at time.Time, out models.CommodityPrices) error {
	q := url.Values{}
	q.Set("function", "WTI")
	q.Set("interval", "daily")
	q.Set("apikey", c.apiKey)

	var series avSeries
	if err := c.client.getJSON(ctx, c.oilURL+"?"+q.Encode(), &series); err != nil {
		return err
	}
	if len(series.Data) == 0 {
		return ErrNoData
	}
	// Alpha Vantage reports "." for days without a print.
	usd, err := strconv.ParseFloat(series.Data[0].Value, 64)
	if err != nil || usd <= 0 {
		return fmt.Errorf("WTI value %q: %w", series.Data[0].Value, ErrNoData)
	}
	out["CRUDE_OIL"] = models.CommodityPrice{
		Name:        "Crude Oil",
		Symbol:      "CRUDE_OIL",
		Price:       usd * c.usdINR,
		Unit:        "INR/barrel",
		LastUpdated: at,
	}
	return nil
}
