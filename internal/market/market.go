// Package market is the read side of the snapshot cache: typed accessors
// for each category and currency conversion over the cached rate table.
package market

import (
	"time"

	"github.com/seenimoa/wealthvista/internal/infra"
	"github.com/seenimoa/wealthvista/pkg/models"
)

// Meta describes the freshness of a snapshot.
type Meta struct {
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	Age       string    `json:"age,omitempty"`
	// Stale is set when the snapshot is older than one refresh interval,
	// i.e. the most recent cycle for this category failed.
	Stale bool `json:"stale"`
}

// Query reads snapshots from the cache. It never fetches.
type Query struct {
	cache    *infra.Cache
	interval time.Duration
}

// NewQuery creates a query façade over cache. interval is the refresh
// period used to flag stale snapshots.
func NewQuery(cache *infra.Cache, interval time.Duration) *Query {
	return &Query{cache: cache, interval: interval}
}

// Snapshot returns the cached snapshot for c. ok is false when the category
// has never been written or its entry expired.
func (q *Query) Snapshot(c models.Category) (models.Snapshot, Meta, bool) {
	e, ok := q.cache.Lookup(string(c))
	if !ok {
		return nil, Meta{}, false
	}
	snap, ok := e.Value.(models.Snapshot)
	if !ok {
		return nil, Meta{}, false
	}
	age := e.Age(q.cache.Now())
	return snap, Meta{
		Available: true,
		UpdatedAt: e.WrittenAt,
		Age:       age.Round(time.Second).String(),
		Stale:     q.interval > 0 && age > q.interval,
	}, true
}

// Status returns the freshness of every category.
func (q *Query) Status() map[models.Category]Meta {
	out := make(map[models.Category]Meta, len(models.Categories))
	for _, c := range models.Categories {
		_, meta, _ := q.Snapshot(c)
		out[c] = meta
	}
	return out
}

func snapshotAs[T models.Snapshot](q *Query, c models.Category) (T, bool) {
	snap, _, ok := q.Snapshot(c)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := snap.(T)
	return v, ok
}

// CurrencyRates returns the cached rate table.
func (q *Query) CurrencyRates() (models.CurrencyRates, bool) {
	return snapshotAs[models.CurrencyRates](q, models.CategoryCurrencyRates)
}

// StockIndices returns the cached index values.
func (q *Query) StockIndices() (models.StockIndices, bool) {
	return snapshotAs[models.StockIndices](q, models.CategoryStockIndices)
}

// CommodityPrices returns the cached commodity prices.
func (q *Query) CommodityPrices() (models.CommodityPrices, bool) {
	return snapshotAs[models.CommodityPrices](q, models.CategoryCommodityPrices)
}

// CryptoPrices returns the cached crypto prices.
func (q *Query) CryptoPrices() (models.CryptoPrices, bool) {
	return snapshotAs[models.CryptoPrices](q, models.CategoryCryptoPrices)
}

// News returns the cached headlines.
func (q *Query) News() (models.News, bool) {
	return snapshotAs[models.News](q, models.CategoryFinancialNews)
}

// GainersLosers returns the cached top movers.
func (q *Query) GainersLosers() (models.GainersLosers, bool) {
	return snapshotAs[models.GainersLosers](q, models.CategoryGainersLosers)
}

// Convert converts amount using the cached rate table. An absent table is
// treated as empty, so identity conversions still succeed.
func (q *Query) Convert(from, to string, amount float64) (Conversion, error) {
	rates, _ := q.CurrencyRates()
	return Convert(rates, from, to, amount)
}
