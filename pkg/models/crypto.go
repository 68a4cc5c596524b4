package models

import "time"

// CryptoPrice is a crypto asset priced in local currency.
type CryptoPrice struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Price       float64   `json:"price_inr"`
	ChangePct   float64   `json:"change_percent"`
	LastUpdated time.Time `json:"last_updated"`
}

// CryptoPrices maps uppercase asset symbols to prices.
type CryptoPrices map[string]CryptoPrice

func (c CryptoPrices) Len() int { return len(c) }
