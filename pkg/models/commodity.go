package models

import "time"

// CommodityPrice is a spot price converted into local currency.
type CommodityPrice struct {
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	ChangePct   float64   `json:"change_percent"`
	Unit        string    `json:"unit"` // e.g., "INR/gram", "INR/barrel"
	LastUpdated time.Time `json:"last_updated"`
}

// CommodityPrices maps commodity keys ("GOLD", "CRUDE_OIL") to prices.
type CommodityPrices map[string]CommodityPrice

func (c CommodityPrices) Len() int { return len(c) }
