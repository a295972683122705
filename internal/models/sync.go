package models

import "time"

// SyncTopRequest drives a screener-ranked universe and price sync.
type SyncTopRequest struct {
	Exchange     string
	Limit        int
	MinMarketCap *int64
	From         time.Time
	To           time.Time
	Period       string
}

// SyncTopResult reports a top-N sync.
type SyncTopResult struct {
	Symbols          []string `json:"symbols"`
	UpsertedPrices   int      `json:"upserted_prices"`
	UpsertedUniverse int      `json:"upserted_universe"`
}

// SyncSymbolsRequest drives an explicit-symbol price sync.
type SyncSymbolsRequest struct {
	Symbols         []string
	DefaultExchange string
	From            time.Time
	To              time.Time
	Period          string
}

// SyncSymbolsResult reports an explicit-symbol sync.
type SyncSymbolsResult struct {
	Symbols        []string `json:"symbols"`
	UpsertedPrices int      `json:"upserted_prices"`
}

// NewsRequest asks the news cache for recent or date-ranged items.
// Zero From and To mean "recent", which may be served from cache.
type NewsRequest struct {
	Symbol          string
	Limit           int
	From            time.Time
	To              time.Time
	CacheHours      int
	RetentionDays   int
	DefaultExchange string
}

// Ranged reports whether the caller asked for an explicit date range.
func (r NewsRequest) Ranged() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}
