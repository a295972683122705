package server

import (
	"net/http"

	"github.com/bobmcallan/marketctx/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stocks
	mux.HandleFunc("/api/stocks/sync/top", s.handleSyncTop)
	mux.HandleFunc("/api/stocks/sync/symbols", s.handleSyncSymbols)
	mux.HandleFunc("/api/stocks/sync/bulk-last-day", s.handleSyncBulkLastDay)
	mux.HandleFunc("/api/stocks/universe/top", s.handleUniverseTop)
	mux.HandleFunc("/api/stocks/", s.routeStocks)

	// Context
	mux.HandleFunc("/api/context/auto", s.handleAutoContext)

	// Exchanges
	mux.HandleFunc("/api/exchanges", s.handleExchanges)
	mux.HandleFunc("/api/exchanges/", s.routeExchanges)

	// Sessions
	mux.HandleFunc("/api/sessions/", s.routeSessions)
}

// routeStocks dispatches /api/stocks/{symbol}/* to the appropriate handler.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	raw, subpath := splitPath(r, "/api/stocks/")
	symbol := common.NormalizeSymbol(raw, s.app.DefaultExchange())
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	switch subpath {
	case "latest":
		s.handleStockLatest(w, r, symbol)
	case "history":
		s.handleStockHistory(w, r, symbol)
	case "context":
		s.handleStockContext(w, r, symbol)
	case "news":
		s.handleStockNews(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeExchanges dispatches /api/exchanges/{code}/symbols.
func (s *Server) routeExchanges(w http.ResponseWriter, r *http.Request) {
	code, subpath := splitPath(r, "/api/exchanges/")
	if code == "" && subpath == "" {
		s.handleExchanges(w, r)
		return
	}
	if code == "" || subpath != "symbols" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleExchangeSymbols(w, r, code)
}

// routeSessions dispatches /api/sessions/{id} and /api/sessions/{id}/messages.
func (s *Server) routeSessions(w http.ResponseWriter, r *http.Request) {
	id, subpath := splitPath(r, "/api/sessions/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "session id is required in path")
		return
	}

	switch subpath {
	case "":
		s.handleSession(w, r, id)
	case "messages":
		s.handleSessionMessages(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}
