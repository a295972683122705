package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/marketctx/internal/models"
)

// StorageManager owns the prices, universe and news collections
type StorageManager interface {
	PriceStore() PriceStore
	UniverseStore() UniverseStore
	NewsStore() NewsStore

	// Close releases the underlying connection
	Close() error
}

// PriceStore persists daily bars keyed by (symbol, date)
type PriceStore interface {
	// UpsertPrices writes records as one unordered batch and returns the
	// number of rows inserted or replaced.
	UpsertPrices(ctx context.Context, records []models.PriceRecord) (int, error)

	// Latest returns the most recent record, or nil when none exists
	Latest(ctx context.Context, symbol string) (*models.PriceRecord, error)

	// History returns records between optional inclusive dates, oldest first
	History(ctx context.Context, symbol, from, to string, limit int) ([]models.PriceRecord, error)

	// Recent returns up to n records, newest first
	Recent(ctx context.Context, symbol string, n int) ([]models.PriceRecord, error)

	// ExistingSymbols reports which candidates have at least one stored record
	ExistingSymbols(ctx context.Context, candidates []string) (map[string]bool, error)
}

// UniverseStore persists screener membership keyed by (exchange, code)
type UniverseStore interface {
	// UpsertUniverse replaces entries and returns how many were new
	UpsertUniverse(ctx context.Context, entries []models.UniverseEntry) (int, error)

	// Top returns up to limit entries by market cap, largest first
	Top(ctx context.Context, limit int) ([]models.UniverseEntry, error)
}

// NewsStore persists news items under the fallback dedup key chain
type NewsStore interface {
	// UpsertNews writes items and returns how many were written
	UpsertNews(ctx context.Context, items []models.NewsItem) (int, error)

	// Fresh returns items fetched at or after since, newest story first
	Fresh(ctx context.Context, symbol string, since time.Time, limit int) ([]models.NewsItem, error)

	// PurgeExpired deletes items fetched before the cutoff
	PurgeExpired(ctx context.Context, before time.Time) (int, error)
}
