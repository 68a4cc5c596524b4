// Package models defines the normalized market snapshot types shared by the
// data sources, the refresh loop, and the query layer.
package models

// Category identifies one cached snapshot. Its string value is the cache key.
type Category string

const (
	CategoryCurrencyRates   Category = "currency_rates"
	CategoryStockIndices    Category = "stock_indices"
	CategoryCommodityPrices Category = "commodity_prices"
	CategoryCryptoPrices    Category = "crypto_prices"
	CategoryFinancialNews   Category = "financial_news"
	CategoryGainersLosers   Category = "gainers_losers"
)

// Categories lists every snapshot category in display order.
var Categories = []Category{
	CategoryCurrencyRates,
	CategoryStockIndices,
	CategoryCommodityPrices,
	CategoryCryptoPrices,
	CategoryFinancialNews,
	CategoryGainersLosers,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Snapshot is the normalized result of one fetch for one category.
// Snapshots are replaced wholesale and never mutated after being cached.
type Snapshot interface {
	Len() int
}
