// Package sync merges provider universe and price data into the store.
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// Upstream operation names reported in common.UpstreamError.
const (
	OpSync     = "EODHD sync"
	OpBulkSync = "EODHD bulk sync"
)

const (
	defaultExchange = "us"
	defaultLimit    = 20
	defaultPeriod   = "d"
	screenerSort    = "market_capitalization.desc"
)

// Service implements interfaces.SyncService.
type Service struct {
	eodhd   interfaces.EODHDClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new sync service
func NewService(eodhd interfaces.EODHDClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		eodhd:   eodhd,
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SyncTop ranks an exchange by market cap, refreshes those universe entries and
// pulls the price series of every ranked symbol. Any provider failure aborts.
func (s *Service) SyncTop(ctx context.Context, req models.SyncTopRequest) (*models.SyncTopResult, error) {
	exchange := strings.TrimSpace(req.Exchange)
	if exchange == "" {
		exchange = defaultExchange
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	filters := []models.ScreenerFilter{{Field: "exchange", Operator: "=", Value: strings.ToLower(exchange)}}
	if req.MinMarketCap != nil {
		filters = append(filters, models.ScreenerFilter{Field: "market_capitalization", Operator: ">", Value: *req.MinMarketCap})
	}

	items, err := s.eodhd.Screener(ctx, models.ScreenerQuery{
		Filters: filters,
		Sort:    screenerSort,
		Limit:   limit,
		Offset:  0,
	})
	if err != nil {
		return nil, common.NewUpstreamError(OpSync, err)
	}

	now := s.now()
	symbols := make([]string, 0, len(items))
	entries := make([]models.UniverseEntry, 0, len(items))
	for _, item := range items {
		entry, ok := universeEntry(item, exchange, now)
		if !ok {
			continue
		}
		symbols = append(symbols, entry.Symbol)
		entries = append(entries, entry)
	}

	inserted, err := s.storage.UniverseStore().UpsertUniverse(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to store universe: %w", err)
	}

	query := eodQuery(req.From, req.To, req.Period)
	upserted := 0
	for _, symbol := range symbols {
		n, err := s.syncSeries(ctx, symbol, query)
		if err != nil {
			return nil, err
		}
		upserted += n
	}

	s.logger.Info().
		Str("exchange", exchange).
		Int("symbols", len(symbols)).
		Int("upserted_prices", upserted).
		Int("upserted_universe", inserted).
		Msg("Top sync complete")

	return &models.SyncTopResult{
		Symbols:          symbols,
		UpsertedPrices:   upserted,
		UpsertedUniverse: inserted,
	}, nil
}

// SyncSymbols pulls the price series of explicit symbols.
func (s *Service) SyncSymbols(ctx context.Context, req models.SyncSymbolsRequest) (*models.SyncSymbolsResult, error) {
	exchange := req.DefaultExchange
	if strings.TrimSpace(exchange) == "" {
		exchange = defaultExchange
	}
	symbols := common.NormalizeSymbols(req.Symbols, exchange)

	query := eodQuery(req.From, req.To, req.Period)
	upserted := 0
	for _, symbol := range symbols {
		n, err := s.syncSeries(ctx, symbol, query)
		if err != nil {
			return nil, err
		}
		upserted += n
	}

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("upserted_prices", upserted).
		Msg("Symbol sync complete")

	return &models.SyncSymbolsResult{Symbols: symbols, UpsertedPrices: upserted}, nil
}

// SyncBulkLastDay merges the latest trading day for an exchange. A non-empty
// symbols list restricts which rows are written.
func (s *Service) SyncBulkLastDay(ctx context.Context, exchangeCode string, symbols []string) (int, error) {
	exchangeCode = strings.TrimSpace(exchangeCode)
	if exchangeCode == "" {
		exchangeCode = "US"
	}

	wanted := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if sym = strings.TrimSpace(sym); sym != "" {
			wanted[strings.ToUpper(sym)] = true
		}
	}

	rows, err := s.eodhd.GetBulkLastDay(ctx, exchangeCode)
	if err != nil {
		return 0, common.NewUpstreamError(OpBulkSync, err)
	}

	now := s.now()
	records := make([]models.PriceRecord, 0, len(rows))
	for _, row := range rows {
		code := row.String(models.FieldBulkCode)
		if code == "" {
			continue
		}
		symbol := code
		if !strings.Contains(code, ".") {
			symbol = common.JoinSymbol(code, exchangeCode)
		}
		if len(wanted) > 0 && !wanted[strings.ToUpper(symbol)] {
			continue
		}
		rec, ok := models.PriceRecordFromProvider(symbol, row, now)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return 0, nil
	}

	n, err := s.storage.PriceStore().UpsertPrices(ctx, records)
	if err != nil {
		return n, fmt.Errorf("failed to store bulk prices: %w", err)
	}

	s.logger.Info().
		Str("exchange", exchangeCode).
		Int("rows", len(rows)).
		Int("upserted", n).
		Msg("Bulk last-day sync complete")

	return n, nil
}

// syncSeries fetches one symbol's series in ascending order and stores it.
func (s *Service) syncSeries(ctx context.Context, symbol string, query models.EODQuery) (int, error) {
	rows, err := s.eodhd.GetEOD(ctx, symbol, query)
	if err != nil {
		return 0, common.NewUpstreamError(OpSync, fmt.Errorf("%s: %w", symbol, err))
	}
	if len(rows) == 0 {
		s.logger.Debug().Str("symbol", symbol).Msg("No EOD rows returned")
		return 0, nil
	}

	now := s.now()
	records := make([]models.PriceRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := models.PriceRecordFromProvider(symbol, row, now); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	n, err := s.storage.PriceStore().UpsertPrices(ctx, records)
	if err != nil {
		return n, fmt.Errorf("failed to store prices for %s: %w", symbol, err)
	}
	return n, nil
}

// universeEntry maps a screener row. Rows without a code are rejected.
func universeEntry(item models.ProviderRecord, fallbackExchange string, now time.Time) (models.UniverseEntry, bool) {
	code := item.String(models.FieldCode)
	if code == "" {
		return models.UniverseEntry{}, false
	}
	exchange := item.String(models.FieldExchange)
	if exchange == "" {
		exchange = fallbackExchange
	}
	symbol := common.JoinSymbol(code, exchange)

	raw := item.Clone()
	raw["symbol"] = symbol
	raw["exchange"] = strings.ToLower(exchange)

	return models.UniverseEntry{
		Exchange:             strings.ToLower(exchange),
		Code:                 code,
		Symbol:               symbol,
		Name:                 item.String(models.FieldName),
		MarketCapitalization: item.Float(models.FieldMarketCap),
		Raw:                  raw,
		UpdatedAt:            now,
	}, true
}

func eodQuery(from, to time.Time, period string) models.EODQuery {
	if period == "" {
		period = defaultPeriod
	}
	return models.EODQuery{From: from, To: to, Period: period, Order: "a"}
}

// Compile-time check
var _ interfaces.SyncService = (*Service)(nil)
