package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/models"
	"github.com/bobmcallan/marketctx/internal/services/marketctx"
)

// Request bounds
const (
	defaultSyncLimit    = 20
	maxSyncLimit        = 200
	maxBulkLimit        = 5000
	defaultHistoryLimit = 400
	defaultNewsLimit    = 10
	defaultUniverseTop  = 20
)

// --- Sync handlers ---

type syncTopRequest struct {
	Exchange     string `json:"exchange"`
	Limit        *int   `json:"limit"`
	MinMarketCap *int64 `json:"min_market_cap"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	Period       string `json:"period"`
}

func (s *Server) handleSyncTop(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req syncTopRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	limit := defaultSyncLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if !inRange(w, "limit", limit, 1, maxSyncLimit) {
		return
	}
	from, to, ok := parseDates(w, req.FromDate, req.ToDate)
	if !ok {
		return
	}

	result, err := s.app.SyncService.SyncTop(r.Context(), models.SyncTopRequest{
		Exchange:     req.Exchange,
		Limit:        limit,
		MinMarketCap: req.MinMarketCap,
		From:         from,
		To:           to,
		Period:       req.Period,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type syncSymbolsRequest struct {
	Symbols         []string `json:"symbols"`
	DefaultExchange string   `json:"default_exchange"`
	FromDate        string   `json:"from_date"`
	ToDate          string   `json:"to_date"`
	Period          string   `json:"period"`
}

func (s *Server) handleSyncSymbols(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req syncSymbolsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	from, to, ok := parseDates(w, req.FromDate, req.ToDate)
	if !ok {
		return
	}
	exchange := req.DefaultExchange
	if strings.TrimSpace(exchange) == "" {
		exchange = s.app.DefaultExchange()
	}

	result, err := s.app.SyncService.SyncSymbols(r.Context(), models.SyncSymbolsRequest{
		Symbols:         req.Symbols,
		DefaultExchange: exchange,
		From:            from,
		To:              to,
		Period:          req.Period,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type bulkLastDayRequest struct {
	ExchangeCode string   `json:"exchange_code"`
	Symbols      []string `json:"symbols"`
	Limit        *int     `json:"limit"`
}

func (s *Server) handleSyncBulkLastDay(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req bulkLastDayRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	limit := defaultSyncLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if !inRange(w, "limit", limit, 1, maxBulkLimit) {
		return
	}

	// A null symbol list means the top of the stored universe.
	symbols := req.Symbols
	if symbols == nil {
		entries, err := s.app.Storage.UniverseStore().Top(r.Context(), limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		symbols = []string{}
		for _, e := range entries {
			if e.Symbol != "" {
				symbols = append(symbols, e.Symbol)
			}
		}
	}

	n, err := s.app.SyncService.SyncBulkLastDay(r.Context(), req.ExchangeCode, symbols)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"upserted": n})
}

// --- Read handlers ---

type universeItem struct {
	Symbol               string                `json:"symbol"`
	Exchange             string                `json:"exchange"`
	Code                 string                `json:"code"`
	MarketCapitalization *float64              `json:"market_capitalization"`
	Raw                  models.ProviderRecord `json:"raw"`
}

func (s *Server) handleUniverseTop(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultUniverseTop)
	if !ok {
		return
	}

	entries, err := s.app.Storage.UniverseStore().Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]universeItem, 0, len(entries))
	for _, e := range entries {
		symbol := e.Symbol
		if symbol == "" && e.Code != "" {
			symbol = common.JoinSymbol(e.Code, e.Exchange)
		}
		out = append(out, universeItem{
			Symbol:               symbol,
			Exchange:             e.Exchange,
			Code:                 e.Code,
			MarketCapitalization: e.MarketCap(),
			Raw:                  e.Raw,
		})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleStockLatest(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	record, err := s.app.Storage.PriceStore().Latest(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if record == nil {
		WriteError(w, http.StatusNotFound, "symbol not found")
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from_date"), q.Get("to_date")
	if _, _, ok := parseDates(w, from, to); !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultHistoryLimit)
	if !ok {
		return
	}

	items, err := s.app.Storage.PriceStore().History(r.Context(), symbol, from, to, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.PriceRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"items":  items,
	})
}

func (s *Server) handleStockContext(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	text, err := s.app.ContextService.PriceContext(r.Context(), symbol, marketctx.DefaultLookbackDays)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"symbol":  symbol,
		"context": text,
	})
}

func (s *Server) handleStockNews(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	from, to, ok := parseDates(w, q.Get("from_date"), q.Get("to_date"))
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultNewsLimit)
	if !ok {
		return
	}

	items, err := s.app.NewsService.GetNews(r.Context(), models.NewsRequest{
		Symbol:          symbol,
		Limit:           limit,
		From:            from,
		To:              to,
		CacheHours:      s.app.Config.News.CacheHours,
		RetentionDays:   s.app.Config.News.RetentionDays,
		DefaultExchange: s.app.DefaultExchange(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"items":  items,
	})
}

type autoContextRequest struct {
	Text            string `json:"text"`
	DefaultExchange string `json:"default_exchange"`
}

func (s *Server) handleAutoContext(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req autoContextRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	exchange := req.DefaultExchange
	if strings.TrimSpace(exchange) == "" {
		exchange = s.app.DefaultExchange()
	}

	text, err := s.app.ContextService.AutoContext(r.Context(), req.Text, exchange)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"context": text})
}

// --- Exchange pass-through ---

func (s *Server) handleExchanges(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	exchanges, err := s.app.EODHDClient.GetExchanges(r.Context())
	if err != nil {
		writeServiceError(w, common.NewUpstreamError("EODHD exchanges", err))
		return
	}
	WriteJSON(w, http.StatusOK, exchanges)
}

func (s *Server) handleExchangeSymbols(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbols, err := s.app.EODHDClient.GetExchangeSymbols(r.Context(), code)
	if err != nil {
		writeServiceError(w, common.NewUpstreamError(fmt.Sprintf("EODHD symbols %s", strings.ToUpper(code)), err))
		return
	}
	WriteJSON(w, http.StatusOK, symbols)
}
