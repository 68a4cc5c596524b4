package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// crossCurrencies are quoted against INR via the USD rate table.
var crossCurrencies = []string{"EUR", "GBP", "AED", "SGD", "JPY"}

// Currency derives INR cross rates from a USD-based rate table.
//
// Every rate is reported with a zero change percent. The upstream table has
// no change field and the zero is intentional, not a missing computation.
type Currency struct {
	client *Client
	url    string
	log    *slog.Logger
}

// NewCurrency creates a currency source reading the table at url.
func NewCurrency(client *Client, url string, log *slog.Logger) *Currency {
	return &Currency{client: client, url: url, log: log}
}

func (c *Currency) Name() string              { return "currency" }
func (c *Currency) Category() models.Category { return models.CategoryCurrencyRates }

type rateTable struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Fetch returns USD-INR and X-INR for every cross currency present in the table.
func (c *Currency) Fetch(ctx context.Context, at time.Time) (models.Snapshot, error) {
	var table rateTable
	if err := c.client.getJSON(ctx, c.url, &table); err != nil {
		return nil, fmt.Errorf("currency rates: %w", err)
	}

	inr := table.Rates["INR"]
	if inr <= 0 {
		return nil, fmt.Errorf("currency rates: INR missing from %s table: %w", table.Base, ErrNoData)
	}

	rates := models.CurrencyRates{}
	put := func(from string, rate float64) {
		key := models.PairKey(from, "INR")
		rates[key] = models.CurrencyRate{Symbol: key, Rate: rate, LastUpdated: at}
	}

	put("USD", inr)
	for _, code := range crossCurrencies {
		x := table.Rates[code]
		if x <= 0 {
			c.log.Debug("currency missing from rate table", "currency", code)
			continue
		}
		put(code, inr/x)
	}
	return rates, nil
}
