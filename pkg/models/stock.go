package models

import "sort"

// StockQuote is a last-price quote for one equity symbol.
type StockQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_percent"`
}

// GainersLosers holds the top and bottom movers of one ranking pass.
type GainersLosers struct {
	Gainers []StockQuote `json:"gainers"`
	Losers  []StockQuote `json:"losers"`
}

func (g GainersLosers) Len() int { return len(g.Gainers) + len(g.Losers) }

// RankMovers sorts quotes by change percent, descending, and takes the first
// n as gainers and the last n as losers of the same sequence. With fewer than
// 2n quotes the two lists overlap; that is expected, not an error.
func RankMovers(quotes []StockQuote, n int) GainersLosers {
	sorted := make([]StockQuote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePct > sorted[j].ChangePct
	})

	k := min(n, len(sorted))
	gainers := make([]StockQuote, k)
	copy(gainers, sorted[:k])
	losers := make([]StockQuote, k)
	copy(losers, sorted[len(sorted)-k:])

	return GainersLosers{Gainers: gainers, Losers: losers}
}
