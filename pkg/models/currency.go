package models

import "time"

// CurrencyRate is a cross rate keyed by a "FROM-TO" pair symbol.
// ChangePct is always zero: the upstream rate table carries no change field.
type CurrencyRate struct {
	Symbol      string    `json:"symbol"` // e.g., "EUR-INR"
	Rate        float64   `json:"rate"`
	ChangePct   float64   `json:"change_percent"`
	LastUpdated time.Time `json:"last_updated"`
}

// CurrencyRates maps pair symbols to rates.
type CurrencyRates map[string]CurrencyRate

func (r CurrencyRates) Len() int { return len(r) }

// PairKey builds the "FROM-TO" key used in CurrencyRates.
func PairKey(from, to string) string {
	return from + "-" + to
}
