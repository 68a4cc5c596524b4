package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/seenimoa/wealthvista/internal/config"
	"github.com/seenimoa/wealthvista/internal/market"
	"github.com/seenimoa/wealthvista/internal/refresh"
	"github.com/seenimoa/wealthvista/pkg/models"
	"github.com/seenimoa/wealthvista/pkg/utils"
)

// emptySnapshots is served for categories with no cached data yet, so
// clients always get the same JSON shape.
var emptySnapshots = map[models.Category]models.Snapshot{
	models.CategoryCurrencyRates:   models.CurrencyRates{},
	models.CategoryStockIndices:    models.StockIndices{},
	models.CategoryCommodityPrices: models.CommodityPrices{},
	models.CategoryCryptoPrices:    models.CryptoPrices{},
	models.CategoryFinancialNews:   models.News{},
	models.CategoryGainersLosers:   models.GainersLosers{Gainers: []models.StockQuote{}, Losers: []models.StockQuote{}},
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":        "ok",
			"market_status": utils.MarketStatus(),
			"time_ist":      utils.FormatDateTimeIST(utils.NowIST()),
		},
	})
}

// writeSnapshot serves the cached snapshot for c. A missing snapshot is not
// an error: the response succeeds with empty data and meta.available=false.
func (s *Server) writeSnapshot(w http.ResponseWriter, c models.Category) {
	snap, meta, ok := s.query.Snapshot(c)
	if !ok {
		snap = emptySnapshots[c]
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    snap,
		Meta:    &meta,
	})
}

func (s *Server) handleCurrencyRates(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryCurrencyRates)
}

func (s *Server) handleStockIndices(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryStockIndices)
}

func (s *Server) handleCommodityPrices(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryCommodityPrices)
}

func (s *Server) handleCryptoPrices(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryCryptoPrices)
}

func (s *Server) handleFinancialNews(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryFinancialNews)
}

func (s *Server) handleGainersLosers(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, models.CategoryGainersLosers)
}

// ConvertRequest holds the query parameters of GET /api/convert.
type ConvertRequest struct {
	From   string  `validate:"required,len=3,alpha"`
	To     string  `validate:"required,len=3,alpha"`
	Amount float64 `validate:"-"`
}

// handleConvert converts an amount using the cached rates.
// Defaults: from=USD, to=INR, amount=1.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ConvertRequest{
		From:   strings.ToUpper(strings.TrimSpace(q.Get("from"))),
		To:     strings.ToUpper(strings.TrimSpace(q.Get("to"))),
		Amount: 1,
	}
	if req.From == "" {
		req.From = "USD"
	}
	if req.To == "" {
		req.To = "INR"
	}
	if raw := q.Get("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "amount must be a number")
			return
		}
		req.Amount = amount
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "currency codes must be 3 letters")
		return
	}

	conv, err := s.query.Convert(req.From, req.To, req.Amount)
	switch {
	case errors.Is(err, market.ErrRateUnavailable), errors.Is(err, market.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: conv})
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	MarketStatus string                          `json:"market_status"`
	Interval     string                          `json:"interval"`
	Running      bool                            `json:"running"`
	Cycles       int                             `json:"cycles"`
	LastCycle    *refresh.CycleReport            `json:"last_cycle,omitempty"`
	Snapshots    map[models.Category]market.Meta `json:"snapshots"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		MarketStatus: utils.MarketStatus(),
		Snapshots:    s.query.Status(),
	}
	if s.cycles != nil {
		resp.Interval = s.cycles.Interval().String()
		resp.Running = s.cycles.Running()
		resp.Cycles = s.cycles.Cycles()
		if last, ok := s.cycles.LastReport(); ok {
			resp.LastCycle = &last
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleGetConfig returns the running configuration. API keys are excluded
// from the JSON encoding.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.cfg})
}

// handleGetConfigKeys returns the status of the provider API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
