package interfaces

import (
	"context"

	"github.com/bobmcallan/marketctx/internal/models"
)

// SyncService merges provider data into the store
type SyncService interface {
	// SyncTop ranks the exchange by market cap, refreshes the universe and
	// the price series of every discovered symbol
	SyncTop(ctx context.Context, req models.SyncTopRequest) (*models.SyncTopResult, error)

	// SyncSymbols refreshes the price series of explicit symbols
	SyncSymbols(ctx context.Context, req models.SyncSymbolsRequest) (*models.SyncSymbolsResult, error)

	// SyncBulkLastDay merges the exchange-wide latest trading day, optionally
	// restricted to a symbol set
	SyncBulkLastDay(ctx context.Context, exchangeCode string, symbols []string) (int, error)
}

// NewsService is a freshness-gated read-through cache for news
type NewsService interface {
	GetNews(ctx context.Context, req models.NewsRequest) ([]models.NewsItem, error)
}

// ContextService renders stored data into agent context blocks
type ContextService interface {
	PriceContext(ctx context.Context, symbol string, lookbackDays int) (string, error)
	UniverseTopContext(ctx context.Context, limit int) (string, error)
	AutoContext(ctx context.Context, text, defaultExchange string) (string, error)
	NewsContext(symbol string, items []models.NewsItem) string
}

// SessionCache holds bounded per-session conversation history
type SessionCache interface {
	Append(sessionID, role, content string)
	History(sessionID string) []models.ChatMessage
	Reset(sessionID string)
	Sweep() int
}
