package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRecord_AliasPriority(t *testing.T) {
	r := ProviderRecord{"Code": "AAPL", "MarketCapitalization": json.Number("3000000000000")}

	assert.Equal(t, "AAPL", r.String(FieldCode))
	require.NotNil(t, r.Float(FieldMarketCap))
	assert.Equal(t, 3e12, *r.Float(FieldMarketCap))

	r["code"] = "MSFT"
	assert.Equal(t, "MSFT", r.String(FieldCode), "lower-case spelling wins")

	r["code"] = ""
	assert.Equal(t, "AAPL", r.String(FieldCode), "blank value falls through")
}

func TestProviderRecord_FloatTolerance(t *testing.T) {
	r := ProviderRecord{"a": "12.5", "b": "N/A", "c": "", "d": nil, "e": int64(7), "f": uint64(9)}

	assert.Equal(t, 12.5, *r.Float(Aliases{"a"}))
	assert.Nil(t, r.Float(Aliases{"b"}))
	assert.Nil(t, r.Float(Aliases{"c"}))
	assert.Nil(t, r.Float(Aliases{"d"}))
	assert.Nil(t, r.Float(Aliases{"missing"}))
	assert.Equal(t, 7.0, *r.Float(Aliases{"e"}))
	assert.Equal(t, int64(9), *r.Int(Aliases{"f"}))
	assert.Equal(t, int64(12), *r.Int(Aliases{"a"}))
}

func TestPriceRecordFromProvider(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	row := ProviderRecord{
		"date": "2026-01-02", "open": 10.0, "high": 11.0, "low": 9.5,
		"close": 10.5, "adjustedClose": 10.4, "volume": int64(1200),
	}

	rec, ok := PriceRecordFromProvider("AAPL.US", row, now)
	require.True(t, ok)
	assert.Equal(t, "AAPL.US", rec.Symbol)
	assert.Equal(t, 10.4, *rec.AdjustedClose)
	assert.Equal(t, int64(1200), *rec.Volume)
	assert.Equal(t, PriceSource, rec.Source)
	assert.Equal(t, now, rec.UpdatedAt)

	_, ok = PriceRecordFromProvider("AAPL.US", ProviderRecord{"close": 1.0}, now)
	assert.False(t, ok, "rows without a date are dropped")
}

func TestNewsItem_DedupKeyChain(t *testing.T) {
	now := time.Now()

	withURL := NewsItemFromProvider("AAPL.US", ProviderRecord{"link": "https://x/1", "title": "T", "date": "2026-01-01"}, now)
	assert.Equal(t, NewsKeyURL, withURL.DedupKey().Kind)
	assert.Equal(t, []any{"AAPL.US", "url", "https://x/1"}, withURL.DedupKey().RecordKey())

	titleDate := NewsItemFromProvider("AAPL.US", ProviderRecord{"title": "T", "datetime": "2026-01-01"}, now)
	assert.Equal(t, NewsKey{Kind: NewsKeyTitleDate, Symbol: "AAPL.US", Title: "T", Date: "2026-01-01"}, titleDate.DedupKey())

	titleOnly := NewsItemFromProvider("AAPL.US", ProviderRecord{"title": "T"}, now)
	assert.Equal(t, NewsKeyTitle, titleOnly.DedupKey().Kind)
	assert.Nil(t, titleOnly.URL)
	assert.Nil(t, titleOnly.Source)
}

func TestUniverseEntry_Fallbacks(t *testing.T) {
	u := UniverseEntry{Raw: ProviderRecord{"Name": "Apple Inc", "MarketCapitalization": 2.5e12}}
	assert.Equal(t, "Apple Inc", u.DisplayName())
	assert.Equal(t, 2.5e12, *u.MarketCap())
}
