package marketctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/models"
	tcommon "github.com/bobmcallan/marketctx/tests/common"
)

var latestDay = time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }

func iptr(n int64) *int64 { return &n }

func sptr(s string) *string { return &s }

func newTestBuilder() (*Builder, *tcommon.MemoryStorage) {
	store := tcommon.NewMemoryStorage()
	return NewBuilder(store.PriceStore(), store.UniverseStore(), common.NewSilentLogger()), store
}

// seedCloses stores one bar per close, newest first, one calendar day apart.
func seedCloses(t *testing.T, store *tcommon.MemoryStorage, symbol string, closes ...*float64) {
	t.Helper()
	records := make([]models.PriceRecord, len(closes))
	for i, c := range closes {
		records[i] = models.PriceRecord{
			Symbol: symbol,
			Date:   latestDay.AddDate(0, 0, -i).Format("2006-01-02"),
			Close:  c,
			Source: models.PriceSource,
		}
	}
	_, err := store.PriceStore().UpsertPrices(context.Background(), records)
	require.NoError(t, err)
}

func TestPriceContext_NoData(t *testing.T) {
	b, _ := newTestBuilder()

	out, err := b.PriceContext(context.Background(), "AAPL.US", 60)
	require.NoError(t, err)
	assert.Equal(t, "[STOCK_DATA] No data for AAPL.US.", out)
}

func TestPriceContext_FullBlock(t *testing.T) {
	b, store := newTestBuilder()
	ctx := context.Background()

	closes := make([]*float64, 62)
	for i := range closes {
		closes[i] = fptr(100)
	}
	closes[0] = fptr(110)
	closes[20] = fptr(50)
	closes[60] = fptr(0)
	seedCloses(t, store, "AAPL.US", closes...)

	// Overwrite the latest bar with full OHLCV.
	_, err := store.PriceStore().UpsertPrices(ctx, []models.PriceRecord{{
		Symbol: "AAPL.US",
		Date:   "2026-03-30",
		Open:   fptr(109.5),
		High:   fptr(111),
		Low:    fptr(108.25),
		Close:  fptr(110),
		Volume: iptr(123456),
	}})
	require.NoError(t, err)

	out, err := b.PriceContext(ctx, "AAPL.US", 60)
	require.NoError(t, err)

	want := "[STOCK_DATA]\n" +
		"symbol: AAPL.US\n" +
		"as_of: 2026-03-30\n" +
		"open: 109.5\n" +
		"high: 111.0\n" +
		"low: 108.25\n" +
		"close: 110.0\n" +
		"adjusted_close: None\n" +
		"volume: 123456\n" +
		"prev_close: 100.0\n" +
		"day_change: +10.0000\n" +
		"day_change_pct: +10.00%\n" +
		"returns:\n" +
		"- 5d: +10.00%\n" +
		"- 20d: +120.00%\n"
	assert.Equal(t, want, out)
}

func TestPriceContext_SingleRecord(t *testing.T) {
	b, store := newTestBuilder()
	seedCloses(t, store, "BHP.AU", fptr(45.2))

	out, err := b.PriceContext(context.Background(), "BHP.AU", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "close: 45.2\n")
	assert.NotContains(t, out, "prev_close")
	assert.NotContains(t, out, "day_change")
	assert.NotContains(t, out, "returns:")
}

func TestPriceContext_ZeroPreviousCloseOmitsChange(t *testing.T) {
	b, store := newTestBuilder()
	seedCloses(t, store, "BHP.AU", fptr(45), fptr(0))

	out, err := b.PriceContext(context.Background(), "BHP.AU", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "prev_close: 0.0\n")
	assert.NotContains(t, out, "day_change")
}

func TestPriceContext_MissingLatestClose(t *testing.T) {
	b, store := newTestBuilder()
	closes := []*float64{nil}
	for i := 0; i < 10; i++ {
		closes = append(closes, fptr(10))
	}
	seedCloses(t, store, "BHP.AU", closes...)

	out, err := b.PriceContext(context.Background(), "BHP.AU", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "close: None\n")
	assert.Contains(t, out, "prev_close: 10.0\n")
	assert.NotContains(t, out, "day_change")
	assert.NotContains(t, out, "returns:")
}

func TestPriceContext_LookbackLimitsHorizons(t *testing.T) {
	b, store := newTestBuilder()
	closes := make([]*float64, 30)
	for i := range closes {
		closes[i] = fptr(100 - float64(i))
	}
	seedCloses(t, store, "AAPL.US", closes...)

	// Lookback 10 reads 11 records, enough for 5d only.
	out, err := b.PriceContext(context.Background(), "AAPL.US", 10)
	require.NoError(t, err)
	assert.Contains(t, out, "- 5d: +5.26%\n")
	assert.NotContains(t, out, "20d")
}

func TestPriceContext_StoreError(t *testing.T) {
	b, store := newTestBuilder()
	store.Err = errors.New("down")

	_, err := b.PriceContext(context.Background(), "AAPL.US", 60)
	assert.Error(t, err)
}

func TestUniverseTopContext(t *testing.T) {
	b, store := newTestBuilder()
	ctx := context.Background()

	_, err := store.UniverseStore().UpsertUniverse(ctx, []models.UniverseEntry{
		{Exchange: "us", Code: "ZZZ", Symbol: "ZZZ.US"},
		{Exchange: "au", Code: "BHP", Raw: models.ProviderRecord{"Name": "BHP Group", "MarketCapitalization": 150000000000.5}},
		{Exchange: "us", Code: "AAPL", Symbol: "AAPL.US", Name: "Apple Inc", MarketCapitalization: fptr(3e12)},
	})
	require.NoError(t, err)

	out, err := b.UniverseTopContext(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, "[UNIVERSE_TOP]\n"+
		"1. AAPL.US | name: Apple Inc | market_cap: 3000000000000\n"+
		"2. BHP.AU | name: BHP Group | market_cap: 150000000000.5\n"+
		"3. ZZZ.US | name: None | market_cap: None\n", out)

	out, err = b.UniverseTopContext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "[UNIVERSE_TOP]\n1. AAPL.US | name: Apple Inc | market_cap: 3000000000000\n", out)
}

func TestUniverseTopContext_Empty(t *testing.T) {
	b, _ := newTestBuilder()

	out, err := b.UniverseTopContext(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, "[UNIVERSE_TOP]\n", out)
}

func TestNewsContext(t *testing.T) {
	b, _ := newTestBuilder()

	items := []models.NewsItem{
		{Symbol: "AAPL.US", Title: "Apple beats", Date: "2026-03-30", Source: sptr("Reuters"), URL: sptr("https://n/1")},
		{Symbol: "AAPL.US", Title: "Quiet day", Date: "2026-03-29"},
		{Symbol: "AAPL.US", Title: "Raw only", Raw: models.ProviderRecord{"published": "2026-03-28", "source_name": "Wire"}},
	}

	want := "[STOCK_NEWS]\n" +
		"symbol: AAPL.US\n" +
		"1. 2026-03-30 | Apple beats | source: Reuters | url: https://n/1\n" +
		"2. 2026-03-29 | Quiet day\n" +
		"3. 2026-03-28 | Raw only | source: Wire\n"
	assert.Equal(t, want, b.NewsContext("AAPL.US", items))
	assert.Equal(t, "[STOCK_NEWS] No news found for AAPL.US.", b.NewsContext("AAPL.US", nil))
}

func TestPriceContext_TwentyDayReturn(t *testing.T) {
	b, store := newTestBuilder()
	closes := make([]*float64, 61)
	for i := range closes {
		closes[i] = fptr(110)
	}
	closes[0] = fptr(120)
	closes[20] = fptr(100)
	seedCloses(t, store, "AAPL.US", closes...)

	out, err := b.PriceContext(context.Background(), "AAPL.US", DefaultLookbackDays)
	require.NoError(t, err)
	assert.Contains(t, out, "- 20d: +20.00%\n")
}
