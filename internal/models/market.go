// Package models defines the stored and exchanged shapes for marketctx.
package models

import (
	"math"
	"time"
)

// PriceSource tags records written from the EODHD feed.
const PriceSource = "eodhd"

// PriceRecord is one trading-day observation for one symbol.
// (Symbol, Date) is unique; a rewrite replaces the record in place.
type PriceRecord struct {
	Symbol        string    `json:"symbol"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Open          *float64  `json:"open"`
	High          *float64  `json:"high"`
	Low           *float64  `json:"low"`
	Close         *float64  `json:"close"`
	AdjustedClose *float64  `json:"adjusted_close"`
	Volume        *int64    `json:"volume"`
	Source        string    `json:"source"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PriceRecordFromProvider converts an EOD row. It returns false when the row
// has no date, which callers drop before submitting a batch.
func PriceRecordFromProvider(symbol string, r ProviderRecord, now time.Time) (PriceRecord, bool) {
	date := r.String(FieldDate)
	if date == "" {
		return PriceRecord{}, false
	}
	return PriceRecord{
		Symbol:        symbol,
		Date:          date,
		Open:          r.Float(FieldOpen),
		High:          r.Float(FieldHigh),
		Low:           r.Float(FieldLow),
		Close:         r.Float(FieldClose),
		AdjustedClose: r.Float(FieldAdjustedClose),
		Volume:        r.Int(FieldVolume),
		Source:        PriceSource,
		UpdatedAt:     now,
	}, true
}

// UniverseEntry records a symbol's membership in an exchange's universe.
// (Exchange, Code) is unique; an upsert replaces the whole document.
type UniverseEntry struct {
	Exchange             string         `json:"exchange"` // lower-cased
	Code                 string         `json:"code"`
	Symbol               string         `json:"symbol"`
	Name                 string         `json:"name"`
	MarketCapitalization *float64       `json:"market_capitalization"`
	Raw                  ProviderRecord `json:"raw"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// MarketCap returns the canonical market cap, falling back to the
// provider-native spellings kept in Raw.
func (u UniverseEntry) MarketCap() *float64 {
	if u.MarketCapitalization != nil {
		return u.MarketCapitalization
	}
	return u.Raw.Float(FieldMarketCap)
}

// DisplayName returns the entry name from either casing.
func (u UniverseEntry) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Raw.String(FieldName)
}

// NewsItem is a single news story linked to a symbol.
type NewsItem struct {
	Symbol    string         `json:"symbol"`
	Title     string         `json:"title"`
	URL       *string        `json:"url"`
	Date      string         `json:"date"`
	Source    *string        `json:"source"`
	Raw       ProviderRecord `json:"raw"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// NewsItemFromProvider maps a provider payload through the news aliases.
func NewsItemFromProvider(symbol string, r ProviderRecord, fetchedAt time.Time) NewsItem {
	return NewsItem{
		Symbol:    symbol,
		Title:     r.String(FieldNewsTitle),
		URL:       optional(r.String(FieldNewsURL)),
		Date:      r.String(FieldNewsDate),
		Source:    optional(r.String(FieldNewsSource)),
		Raw:       r,
		FetchedAt: fetchedAt,
	}
}

// NewsKeyKind identifies which rung of the dedup chain produced a key.
type NewsKeyKind int

const (
	NewsKeyURL NewsKeyKind = iota
	NewsKeyTitleDate
	NewsKeyTitle
)

// NewsKey is the dedup key of a news item: (symbol, url) when a URL exists,
// else (symbol, title, date) when both exist, else (symbol, title).
type NewsKey struct {
	Kind   NewsKeyKind
	Symbol string
	URL    string
	Title  string
	Date   string
}

// DedupKey returns the item's key under the fallback chain.
func (n NewsItem) DedupKey() NewsKey {
	switch {
	case n.URL != nil && *n.URL != "":
		return NewsKey{Kind: NewsKeyURL, Symbol: n.Symbol, URL: *n.URL}
	case n.Title != "" && n.Date != "":
		return NewsKey{Kind: NewsKeyTitleDate, Symbol: n.Symbol, Title: n.Title, Date: n.Date}
	default:
		return NewsKey{Kind: NewsKeyTitle, Symbol: n.Symbol, Title: n.Title}
	}
}

// RecordKey flattens the key into a record-id array.
func (k NewsKey) RecordKey() []any {
	switch k.Kind {
	case NewsKeyURL:
		return []any{k.Symbol, "url", k.URL}
	case NewsKeyTitleDate:
		return []any{k.Symbol, "title_date", k.Title, k.Date}
	default:
		return []any{k.Symbol, "title", k.Title}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IsIntegral reports whether f has no fractional part.
func IsIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}
