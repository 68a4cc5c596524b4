package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/wealthvista/internal/infra"
)

// --- Yahoo Finance v8 chart API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta yfChartMeta `json:"meta"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// priceChange returns the move from the previous close. ok is false when
// either price is missing or zero, in which case the symbol must be skipped.
func (m yfChartMeta) priceChange() (change, pct float64, ok bool) {
	if m.RegularMarketPrice == 0 || m.PreviousClose == 0 {
		return 0, 0, false
	}
	change = m.RegularMarketPrice - m.PreviousClose
	return change, change / m.PreviousClose * 100, true
}

// Yahoo reads chart metadata from the Yahoo Finance v8 chart endpoint.
// Index and movers sources share one Yahoo so they share its rate limiter.
type Yahoo struct {
	client  *Client
	baseURL string
	limiter *infra.RateLimiter
}

// NewYahoo creates a chart reader. A nil limiter disables rate limiting.
func NewYahoo(client *Client, baseURL string, limiter *infra.RateLimiter) *Yahoo {
	return &Yahoo{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
	}
}

// chartMeta fetches the chart metadata for one symbol, bounded by timeout.
func (y *Yahoo) chartMeta(ctx context.Context, symbol string, timeout time.Duration) (yfChartMeta, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return yfChartMeta{}, err
	}

	var resp yfChartResponse
	u := y.baseURL + "/" + url.PathEscape(symbol)
	if err := y.client.getJSONWithin(ctx, timeout, u, &resp); err != nil {
		return yfChartMeta{}, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return yfChartMeta{}, fmt.Errorf("yfinance chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return yfChartMeta{}, fmt.Errorf("yfinance chart %s: %w", symbol, ErrNoData)
	}
	return resp.Chart.Result[0].Meta, nil
}
