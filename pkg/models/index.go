package models

import "time"

// StockIndex is a point-in-time value of a market index.
type StockIndex struct {
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"` // provider symbol, e.g., "^NSEI"
	Value       float64   `json:"value"`
	Change      float64   `json:"change"`
	ChangePct   float64   `json:"change_percent"`
	LastUpdated time.Time `json:"last_updated"`
}

// StockIndices maps human-readable index names to values.
type StockIndices map[string]StockIndex

func (s StockIndices) Len() int { return len(s) }
