package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/wealthvista/pkg/models"
)

// DefaultMoverSymbols is the fixed equity universe ranked for top movers.
var DefaultMoverSymbols = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "HINDUNILVR.NS",
	"ICICIBANK.NS", "KOTAKBANK.NS", "SBIN.NS", "BHARTIARTL.NS", "ITC.NS",
}

// moversPerSide is how many gainers and losers are reported.
const moversPerSide = 5

// Movers ranks a fixed equity universe by change percent.
type Movers struct {
	yahoo       *Yahoo
	symbols     []string
	timeout     time.Duration
	concurrency int
	log         *slog.Logger
}

// NewMovers creates a top movers source for DefaultMoverSymbols. Each symbol
// is fetched independently, bounded by timeout.
func NewMovers(yahoo *Yahoo, timeout time.Duration, log *slog.Logger) *Movers {
	return &Movers{
		yahoo:       yahoo,
		symbols:     DefaultMoverSymbols,
		timeout:     timeout,
		concurrency: 4,
		log:         log,
	}
}

func (m *Movers) Name() string              { return "top movers" }
func (m *Movers) Category() models.Category { return models.CategoryGainersLosers }

// Fetch quotes every symbol concurrently, drops the failures, and ranks the
// rest. Fewer than ten survivors give shorter or overlapping lists.
func (m *Movers) Fetch(ctx context.Context, _ time.Time) (models.Snapshot, error) {
	var (
		mu      sync.Mutex
		lastErr error
	)
	// Indexed by universe position so ties rank in a stable order.
	slots := make([]*models.StockQuote, len(m.symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, sym := range m.symbols {
		g.Go(func() error {
			q, err := m.quote(gctx, sym)
			if err != nil {
				// Non-fatal: the symbol is left out of the ranking.
				m.log.Debug("mover quote failed", "symbol", sym, "error", err)
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]models.StockQuote, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}

	if len(quotes) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("top movers: %w", lastErr)
		}
		return nil, fmt.Errorf("top movers: %w", ErrNoData)
	}
	if len(quotes) < len(m.symbols) {
		m.log.Info("top movers ranked from partial universe", "quoted", len(quotes), "universe", len(m.symbols))
	}
	return models.RankMovers(quotes, moversPerSide), nil
}

func (m *Movers) quote(ctx context.Context, symbol string) (models.StockQuote, error) {
	meta, err := m.yahoo.chartMeta(ctx, symbol, m.timeout)
	if err != nil {
		return models.StockQuote{}, err
	}
	change, pct, ok := meta.priceChange()
	if !ok {
		return models.StockQuote{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	name := meta.Symbol
	if name == "" {
		name = symbol
	}
	return models.StockQuote{
		Symbol:    symbol,
		Name:      name,
		Price:     meta.RegularMarketPrice,
		Change:    change,
		ChangePct: pct,
	}, nil
}
