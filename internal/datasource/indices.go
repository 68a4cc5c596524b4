package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// IndexSymbol pairs a display name with its provider symbol.
type IndexSymbol struct {
	Name   string
	Symbol string
}

// DefaultIndices are the tracked Indian benchmark indices.
var DefaultIndices = []IndexSymbol{
	{Name: "NIFTY 50", Symbol: "^NSEI"},
	{Name: "SENSEX", Symbol: "^BSESN"},
	{Name: "BANK NIFTY", Symbol: "^NSEBANK"},
}

// Indices reads the benchmark indices from Yahoo chart metadata.
type Indices struct {
	yahoo   *Yahoo
	indices []IndexSymbol
	timeout time.Duration
	log     *slog.Logger
}

// NewIndices creates an index source for DefaultIndices.
func NewIndices(yahoo *Yahoo, timeout time.Duration, log *slog.Logger) *Indices {
	return &Indices{yahoo: yahoo, indices: DefaultIndices, timeout: timeout, log: log}
}

func (s *Indices) Name() string              { return "stock indices" }
func (s *Indices) Category() models.Category { return models.CategoryStockIndices }

// Fetch returns every index whose current and previous close are both known.
func (s *Indices) Fetch(ctx context.Context, at time.Time) (models.Snapshot, error) {
	out := models.StockIndices{}
	var lastErr error

	for _, idx := range s.indices {
		meta, err := s.yahoo.chartMeta(ctx, idx.Symbol, s.timeout)
		if err != nil {
			s.log.Warn("index fetch failed", "index", idx.Name, "error", err)
			lastErr = err
			continue
		}
		change, pct, ok := meta.priceChange()
		if !ok {
			s.log.Debug("index skipped, missing price", "index", idx.Name)
			continue
		}
		out[idx.Name] = models.StockIndex{
			Name:        idx.Name,
			Symbol:      idx.Symbol,
			Value:       meta.RegularMarketPrice,
			Change:      change,
			ChangePct:   pct,
			LastUpdated: at,
		}
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("stock indices: %w", lastErr)
		}
		return nil, fmt.Errorf("stock indices: %w", ErrNoData)
	}
	return out, nil
}
