// Package interfaces defines service contracts for marketctx
package interfaces

import (
	"context"

	"github.com/bobmcallan/marketctx/internal/models"
)

//go:generate mockgen -source=clients.go -destination=mocks/eodhd_mock.go -package=mocks

// EODHDClient provides read-only access to the EODHD API.
// Every method returns loosely-typed rows or a provider error.
type EODHDClient interface {
	// Screener queries the stock screener
	Screener(ctx context.Context, query models.ScreenerQuery) ([]models.ProviderRecord, error)

	// GetEOD retrieves an end-of-day series for one symbol
	GetEOD(ctx context.Context, symbol string, query models.EODQuery) ([]models.ProviderRecord, error)

	// GetBulkLastDay retrieves the latest trading day for a whole exchange
	GetBulkLastDay(ctx context.Context, exchangeCode string) ([]models.ProviderRecord, error)

	// GetNews retrieves news by symbol or topic
	GetNews(ctx context.Context, query models.NewsQuery) ([]models.ProviderRecord, error)

	// GetExchanges lists supported exchanges
	GetExchanges(ctx context.Context) ([]models.ProviderRecord, error)

	// GetExchangeSymbols lists the symbols traded on an exchange
	GetExchangeSymbols(ctx context.Context, code string) ([]models.ProviderRecord, error)
}
