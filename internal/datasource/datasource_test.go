package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/wealthvista/internal/infra"
	"github.com/seenimoa/wealthvista/pkg/models"
)

var testAt = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func newTestClient() *Client {
	return NewClient(2*time.Second, "wealthvista-test", infra.DiscardLogger())
}

func serveJSON(t *testing.T, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serveStatus(t *testing.T, code int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ── Client ──

func TestGetJSONHTTPError(t *testing.T) {
	srv := serveStatus(t, http.StatusTooManyRequests)
	var out map[string]any
	err := newTestClient().getJSON(context.Background(), srv.URL, &out)

	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ErrHTTP, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
}

func TestGetJSONTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, "test", infra.DiscardLogger())
	start := time.Now()
	var out map[string]any
	if err := c.getJSON(context.Background(), srv.URL, &out); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request not bounded by timeout: took %s", elapsed)
	}
}

func TestGetJSONMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer srv.Close()

	var out map[string]any
	if err := newTestClient().getJSON(context.Background(), srv.URL, &out); err == nil {
		t.Error("expected decode error")
	}
}

// ── Currency ──

func TestCurrencyCrossRates(t *testing.T) {
	srv := serveJSON(t, map[string]any{
		"base":  "USD",
		"rates": map[string]float64{"USD": 1, "INR": 83, "EUR": 0.92, "GBP": 0.8, "JPY": 150, "AED": 0},
	})

	snap, err := NewCurrency(newTestClient(), srv.URL, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	rates := snap.(models.CurrencyRates)

	want := map[string]float64{
		"USD-INR": 83,
		"EUR-INR": 83 / 0.92,
		"GBP-INR": 83 / 0.8,
		"JPY-INR": 83.0 / 150,
	}
	if len(rates) != len(want) {
		t.Errorf("got %d rates, want %d: %v", len(rates), len(want), rates)
	}
	for key, rate := range want {
		got, ok := rates[key]
		if !ok {
			t.Errorf("missing %s", key)
			continue
		}
		if !almostEqual(got.Rate, rate) {
			t.Errorf("%s rate = %f, want %f", key, got.Rate, rate)
		}
		if got.ChangePct != 0 {
			t.Errorf("%s change percent = %f, want 0", key, got.ChangePct)
		}
		if got.Symbol != key || !got.LastUpdated.Equal(testAt) {
			t.Errorf("%s metadata: %+v", key, got)
		}
	}
	if _, ok := rates["AED-INR"]; ok {
		t.Error("zero AED rate should be skipped")
	}
	if _, ok := rates["SGD-INR"]; ok {
		t.Error("absent SGD rate should be skipped")
	}
}

func TestCurrencyMissingINR(t *testing.T) {
	srv := serveJSON(t, map[string]any{"base": "USD", "rates": map[string]float64{"EUR": 0.9}})
	_, err := NewCurrency(newTestClient(), srv.URL, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestCurrencyUpstreamFailure(t *testing.T) {
	srv := serveStatus(t, http.StatusBadGateway)
	_, err := NewCurrency(newTestClient(), srv.URL, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Errorf("expected wrapped *ErrHTTP, got %v", err)
	}
}

// ── Yahoo-backed sources ──

type chartQuote struct {
	price, prev float64
	fail        bool
}

func serveCharts(t *testing.T, quotes map[string]chartQuote) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sym := strings.TrimPrefix(r.URL.Path, "/chart/")
		q, ok := quotes[sym]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			return
		}
		if q.fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"symbol":%q,"currency":"INR","regularMarketPrice":%v,"previousClose":%v}}],"error":null}}`,
			sym, q.price, q.prev)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIndicesChangeAndSkips(t *testing.T) {
	srv := serveCharts(t, map[string]chartQuote{
		"^NSEI":    {price: 22500, prev: 22000},
		"^BSESN":   {price: 74000, prev: 0},
		"^NSEBANK": {fail: true},
	})
	yahoo := NewYahoo(newTestClient(), srv.URL+"/chart", nil)

	snap, err := NewIndices(yahoo, time.Second, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	indices := snap.(models.StockIndices)
	if len(indices) != 1 {
		t.Fatalf("got %d indices, want 1: %v", len(indices), indices)
	}
	nifty := indices["NIFTY 50"]
	if nifty.Symbol != "^NSEI" || nifty.Value != 22500 || nifty.Change != 500 {
		t.Errorf("NIFTY 50 = %+v", nifty)
	}
	if !almostEqual(nifty.ChangePct, 500.0/22000*100) {
		t.Errorf("ChangePct = %f", nifty.ChangePct)
	}
}

func TestIndicesAllFail(t *testing.T) {
	srv := serveCharts(t, map[string]chartQuote{})
	yahoo := NewYahoo(newTestClient(), srv.URL+"/chart", nil)
	if _, err := NewIndices(yahoo, time.Second, infra.DiscardLogger()).Fetch(context.Background(), testAt); err == nil {
		t.Error("expected error when no index could be read")
	}
}

func TestMoversPartialUniverse(t *testing.T) {
	pcts := []float64{5, 3, 1, -1, -3, -4, -6}
	quotes := map[string]chartQuote{}
	for i, sym := range DefaultMoverSymbols {
		if i < len(pcts) {
			quotes[sym] = chartQuote{price: 100 + pcts[i], prev: 100}
		} else {
			quotes[sym] = chartQuote{fail: true}
		}
	}
	srv := serveCharts(t, quotes)
	yahoo := NewYahoo(newTestClient(), srv.URL+"/chart", nil)

	snap, err := NewMovers(yahoo, time.Second, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	gl := snap.(models.GainersLosers)
	if len(gl.Gainers) != 5 || len(gl.Losers) != 5 {
		t.Fatalf("got %d gainers / %d losers, want 5 / 5", len(gl.Gainers), len(gl.Losers))
	}
	if gl.Gainers[0].Symbol != "RELIANCE.NS" || gl.Losers[4].Symbol != DefaultMoverSymbols[6] {
		t.Errorf("ranking ends: top=%s bottom=%s", gl.Gainers[0].Symbol, gl.Losers[4].Symbol)
	}
	if gl.Gainers[2].Symbol != gl.Losers[0].Symbol {
		t.Errorf("expected overlap at +1%%: %s vs %s", gl.Gainers[2].Symbol, gl.Losers[0].Symbol)
	}
	if !almostEqual(gl.Gainers[0].ChangePct, 5) || gl.Gainers[0].Change != 5 {
		t.Errorf("top gainer = %+v", gl.Gainers[0])
	}
}

func TestMoversNoQuotes(t *testing.T) {
	srv := serveStatus(t, http.StatusServiceUnavailable)
	yahoo := NewYahoo(newTestClient(), srv.URL, nil)
	if _, err := NewMovers(yahoo, time.Second, infra.DiscardLogger()).Fetch(context.Background(), testAt); err == nil {
		t.Error("expected error when every quote fails")
	}
}

// ── Commodity ──

func TestCommodityConversion(t *testing.T) {
	metals := serveJSON(t, []map[string]any{
		{"metal": "gold", "price": 2000.0},
		{"metal": "silver", "price": 25.0},
		{"metal": "platinum", "price": 950.0},
	})
	var gotQuery string
	oil := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"name":"Crude Oil Prices WTI","data":[{"date":"2026-02-27","value":"80.5"},{"date":"2026-02-26","value":"79"}]}`)
	}))
	defer oil.Close()

	c := NewCommodity(newTestClient(), metals.URL, oil.URL, "av-key", 83.0, infra.DiscardLogger())
	snap, err := c.Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	prices := snap.(models.CommodityPrices)
	if len(prices) != 3 {
		t.Fatalf("got %d commodities, want 3: %v", len(prices), prices)
	}
	if g := prices["GOLD"]; !almostEqual(g.Price, 2000*83/31.1035) || g.Unit != "INR/gram" {
		t.Errorf("GOLD = %+v", g)
	}
	if s := prices["SILVER"]; !almostEqual(s.Price, 25*83/31.1035) {
		t.Errorf("SILVER = %+v", s)
	}
	if o := prices["CRUDE_OIL"]; !almostEqual(o.Price, 80.5*83) || o.Unit != "INR/barrel" {
		t.Errorf("CRUDE_OIL = %+v", o)
	}
	for key, p := range prices {
		if p.ChangePct != 0 {
			t.Errorf("%s change percent = %f, want 0", key, p.ChangePct)
		}
	}
	if !strings.Contains(gotQuery, "function=WTI") || !strings.Contains(gotQuery, "apikey=av-key") {
		t.Errorf("oil query = %s", gotQuery)
	}
}

func TestCommodityPartialFailure(t *testing.T) {
	metals := serveStatus(t, http.StatusInternalServerError)
	oil := serveJSON(t, map[string]any{"data": []map[string]string{{"value": "75"}}})

	snap, err := NewCommodity(newTestClient(), metals.URL, oil.URL, "demo", 83.0, infra.DiscardLogger()).
		Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("one working feed should be enough: %v", err)
	}
	if prices := snap.(models.CommodityPrices); len(prices) != 1 || prices["CRUDE_OIL"].Price != 75*83 {
		t.Errorf("prices = %v", prices)
	}
}

func TestCommodityBothFail(t *testing.T) {
	metals := serveStatus(t, http.StatusInternalServerError)
	oil := serveJSON(t, map[string]any{"Information": "rate limit"})

	_, err := NewCommodity(newTestClient(), metals.URL, oil.URL, "demo", 83.0, infra.DiscardLogger()).
		Fetch(context.Background(), testAt)
	if err == nil {
		t.Fatal("expected error when both feeds fail")
	}
	if !errors.Is(err, ErrNoData) {
		t.Errorf("joined error should include ErrNoData from the empty oil series: %v", err)
	}
}

// ── Crypto ──

func TestCryptoOmitsAbsentAssets(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		fmt.Fprint(w, `{"bitcoin":{"inr":5600000,"inr_24h_change":1.5},"ethereum":{"inr":290000,"inr_24h_change":-2.25},"dogecoin":{}}`)
	}))
	defer srv.Close()

	snap, err := NewCrypto(newTestClient(), srv.URL, infra.DiscardLogger()).Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	prices := snap.(models.CryptoPrices)
	if len(prices) != 2 {
		t.Fatalf("got %d assets, want 2: %v", len(prices), prices)
	}
	btc := prices["BITCOIN"]
	if btc.Name != "Bitcoin" || btc.Price != 5600000 || btc.ChangePct != 1.5 {
		t.Errorf("BITCOIN = %+v", btc)
	}
	if len(strings.Split(gotIDs, ",")) != len(DefaultCryptoAssets) {
		t.Errorf("ids = %q, want all %d assets", gotIDs, len(DefaultCryptoAssets))
	}
}

// ── News ──

func TestNewsHeadlines(t *testing.T) {
	srv := serveJSON(t, map[string]any{
		"status": "ok",
		"articles": []map[string]any{
			{"title": "Sensex climbs", "description": "Banks lead", "url": "https://example.com/a",
				"publishedAt": "2026-03-02T04:30:00Z", "source": map[string]string{"name": "Example"}},
			{"title": "Bad date", "url": "https://example.com/b", "publishedAt": "soon",
				"source": map[string]string{"name": "Example"}},
		},
	})

	n := NewNews(newTestClient(), NewsOptions{URL: srv.URL, APIKey: "k", Country: "in", Category: "business"}, infra.DiscardLogger())
	snap, err := n.Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	items := snap.(models.News)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].PublishedAt.Hour() != 10 {
		t.Errorf("PublishedAt = %v, want 10:00 IST", items[0].PublishedAt)
	}
	if items[0].Source != "Example" {
		t.Errorf("Source = %q", items[0].Source)
	}
}

const testRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Market Wire</title>
<item><title>Older</title><link>https://example.com/older</link>
<description>&lt;p&gt;Plain &lt;b&gt;text&lt;/b&gt;&lt;/p&gt;</description>
<pubDate>Mon, 02 Mar 2026 03:00:00 GMT</pubDate></item>
<item><title>Newer</title><link>https://example.com/newer</link>
<pubDate>Mon, 02 Mar 2026 05:00:00 GMT</pubDate></item>
</channel></rss>`

func TestNewsFallsBackToRSS(t *testing.T) {
	api := serveJSON(t, map[string]any{"status": "error", "code": "apiKeyInvalid", "message": "bad key"})
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testRSS)
	}))
	defer feed.Close()

	n := NewNews(newTestClient(), NewsOptions{URL: api.URL, RSSFeeds: []string{feed.URL}}, infra.DiscardLogger())
	snap, err := n.Fetch(context.Background(), testAt)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	items := snap.(models.News)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Newer" {
		t.Errorf("first item = %q, want newest first", items[0].Title)
	}
	if items[1].Description != "Plain text" {
		t.Errorf("Description = %q, want HTML stripped", items[1].Description)
	}
	if items[0].Source != "Market Wire" {
		t.Errorf("Source = %q", items[0].Source)
	}
}

func TestNewsWithoutFallbackFails(t *testing.T) {
	api := serveStatus(t, http.StatusUnauthorized)
	n := NewNews(newTestClient(), NewsOptions{URL: api.URL}, infra.DiscardLogger())
	if _, err := n.Fetch(context.Background(), testAt); err == nil {
		t.Error("expected error without RSS fallback")
	}
}

func TestCleanHTML(t *testing.T) {
	tests := map[string]string{
		"":                           "",
		"plain":                      "plain",
		"<p>Hello <i>world</i></p>":  "Hello world",
		"  <div> padded </div>  ":    "padded",
	}
	for in, want := range tests {
		if got := cleanHTML(in); got != want {
			t.Errorf("cleanHTML(%q) = %q, want %q", in, got, want)
		}
	}
}
