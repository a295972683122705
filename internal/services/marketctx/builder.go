// Package marketctx renders stored market data as line-oriented text blocks
// for an agent to read.
package marketctx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// Block tags
const (
	TagStockData   = "[STOCK_DATA]"
	TagUniverseTop = "[UNIVERSE_TOP]"
	TagStockNews   = "[STOCK_NEWS]"
)

// DefaultLookbackDays bounds the records read for a price context.
const DefaultLookbackDays = 60

// returnHorizons are the trailing-return windows in trading days.
var returnHorizons = []int{5, 20, 60}

// Builder implements interfaces.ContextService over the store.
type Builder struct {
	prices   interfaces.PriceStore
	universe interfaces.UniverseStore
	logger   *common.Logger
	now      func() time.Time
}

// NewBuilder creates a new context builder
func NewBuilder(prices interfaces.PriceStore, universe interfaces.UniverseStore, logger *common.Logger) *Builder {
	return &Builder{
		prices:   prices,
		universe: universe,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PriceContext renders the latest bar for symbol with day change and
// trailing returns.
func (b *Builder) PriceContext(ctx context.Context, symbol string, lookbackDays int) (string, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	records, err := b.prices.Recent(ctx, symbol, lookbackDays+1)
	if err != nil {
		return "", fmt.Errorf("failed to read prices for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		return fmt.Sprintf("%s No data for %s.", TagStockData, symbol), nil
	}

	latest := records[0]
	var prevClose *float64
	if len(records) > 1 {
		prevClose = records[1].Close
	}

	asOf := latest.Date
	if asOf == "" {
		asOf = b.now().Format("2006-01-02")
	}

	var sb strings.Builder
	sb.WriteString(TagStockData + "\n")
	sb.WriteString(fmt.Sprintf("symbol: %s\n", symbol))
	sb.WriteString(fmt.Sprintf("as_of: %s\n", asOf))
	sb.WriteString(fmt.Sprintf("open: %s\n", formatOptFloat(latest.Open)))
	sb.WriteString(fmt.Sprintf("high: %s\n", formatOptFloat(latest.High)))
	sb.WriteString(fmt.Sprintf("low: %s\n", formatOptFloat(latest.Low)))
	sb.WriteString(fmt.Sprintf("close: %s\n", formatOptFloat(latest.Close)))
	sb.WriteString(fmt.Sprintf("adjusted_close: %s\n", formatOptFloat(latest.AdjustedClose)))
	sb.WriteString(fmt.Sprintf("volume: %s\n", formatOptInt(latest.Volume)))

	if prevClose != nil {
		sb.WriteString(fmt.Sprintf("prev_close: %s\n", formatFloat(*prevClose)))
	}
	if latest.Close != nil && prevClose != nil && *prevClose != 0 {
		prev := *prevClose
		change := *latest.Close - prev
		sb.WriteString(fmt.Sprintf("day_change: %+.4f\n", change))
		sb.WriteString(fmt.Sprintf("day_change_pct: %+.2f%%\n", change/prev*100))
	}

	var returns []string
	for _, n := range returnHorizons {
		if len(records) <= n || latest.Close == nil {
			continue
		}
		if records[n].Close == nil || *records[n].Close == 0 {
			continue
		}
		ret := (*latest.Close / *records[n].Close - 1) * 100
		returns = append(returns, fmt.Sprintf("- %dd: %+.2f%%", n, ret))
	}
	if len(returns) > 0 {
		sb.WriteString("returns:\n")
		for _, line := range returns {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}

// UniverseTopContext renders the largest universe entries by market cap.
func (b *Builder) UniverseTopContext(ctx context.Context, limit int) (string, error) {
	entries, err := b.universe.Top(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("failed to read universe: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(TagUniverseTop + "\n")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s | name: %s | market_cap: %s\n",
			i+1, orNone(entrySymbol(e)), orNone(e.DisplayName()), formatMarketCap(e.MarketCap())))
	}
	return sb.String(), nil
}

// NewsContext renders news items for symbol, one ranked line per story.
func (b *Builder) NewsContext(symbol string, items []models.NewsItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("%s No news found for %s.", TagStockNews, symbol)
	}

	var sb strings.Builder
	sb.WriteString(TagStockNews + "\n")
	sb.WriteString(fmt.Sprintf("symbol: %s\n", symbol))
	for i, item := range items {
		date := item.Date
		if date == "" {
			date = item.Raw.String(models.FieldNewsDate)
		}
		line := fmt.Sprintf("%d. %s | %s", i+1, date, item.Title)
		if source := deref(item.Source, item.Raw, models.FieldNewsSource); source != "" {
			line += " | source: " + source
		}
		if url := deref(item.URL, item.Raw, models.FieldNewsURL); url != "" {
			line += " | url: " + url
		}
		sb.WriteString(strings.TrimSpace(line) + "\n")
	}
	return sb.String()
}

// entrySymbol prefers the stored symbol, then CODE.EXCHANGE.
func entrySymbol(e models.UniverseEntry) string {
	if e.Symbol != "" {
		return e.Symbol
	}
	code := e.Code
	if code == "" {
		code = e.Raw.String(models.FieldCode)
	}
	exchange := e.Exchange
	if exchange == "" {
		exchange = e.Raw.String(models.FieldExchange)
	}
	if code == "" || exchange == "" {
		return ""
	}
	return code + "." + strings.ToUpper(exchange)
}

func deref(p *string, raw models.ProviderRecord, aliases models.Aliases) string {
	if p != nil && *p != "" {
		return *p
	}
	return raw.String(aliases)
}

// Compile-time check
var _ interfaces.ContextService = (*Builder)(nil)
