package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// PriceStore implements interfaces.PriceStore using SurrealDB.
type PriceStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(db *surrealdb.DB, logger *common.Logger) *PriceStore {
	return &PriceStore{db: db, logger: logger}
}

// priceRecordID keys a bar by its natural key, so a rewrite lands on the same record.
func priceRecordID(symbol, date string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(tablePrices, []any{symbol, date})
}

func (s *PriceStore) UpsertPrices(ctx context.Context, records []models.PriceRecord) (int, error) {
	ops := make([]upsertOp, 0, len(records))
	for _, rec := range records {
		if rec.Symbol == "" || rec.Date == "" {
			continue
		}
		ops = append(ops, upsertOp{rid: priceRecordID(rec.Symbol, rec.Date), doc: rec})
	}
	if len(ops) == 0 {
		return 0, nil
	}

	ok, err := runUpserts(ctx, s.db, ops)
	written := countTrue(ok)
	if err != nil {
		s.logger.Warn().Err(err).Int("written", written).Int("submitted", len(ops)).Msg("Price batch had failures")
		return written, fmt.Errorf("failed to upsert prices: %w", err)
	}
	return written, nil
}

func (s *PriceStore) Latest(ctx context.Context, symbol string) (*models.PriceRecord, error) {
	recs, err := s.Recent(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *PriceStore) History(ctx context.Context, symbol, from, to string, limit int) ([]models.PriceRecord, error) {
	conds := []string{"symbol = $symbol"}
	vars := map[string]any{"symbol": symbol}
	if from != "" {
		conds = append(conds, "date >= $from")
		vars["from"] = from
	}
	if to != "" {
		conds = append(conds, "date <= $to")
		vars["to"] = to
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY date ASC", tablePrices, strings.Join(conds, " AND "))
	if limit > 0 {
		sql += " LIMIT $limit"
		vars["limit"] = limit
	}

	return s.query(ctx, sql, vars, "history")
}

func (s *PriceStore) Recent(ctx context.Context, symbol string, n int) ([]models.PriceRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	sql := "SELECT * FROM prices_daily WHERE symbol = $symbol ORDER BY date DESC LIMIT $limit"
	vars := map[string]any{"symbol": symbol, "limit": n}
	return s.query(ctx, sql, vars, "recent")
}

func (s *PriceStore) query(ctx context.Context, sql string, vars map[string]any, op string) ([]models.PriceRecord, error) {
	results, err := surrealdb.Query[[]models.PriceRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read price %s: %w", op, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func (s *PriceStore) ExistingSymbols(ctx context.Context, candidates []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(candidates) == 0 {
		return found, nil
	}

	sql := "SELECT symbol FROM prices_daily WHERE symbol IN $symbols GROUP BY symbol"
	vars := map[string]any{"symbols": candidates}

	type row struct {
		Symbol string `json:"symbol"`
	}
	results, err := surrealdb.Query[[]row](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to probe symbols: %w", err)
	}
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			found[r.Symbol] = true
		}
	}
	return found, nil
}

// Compile-time check
var _ interfaces.PriceStore = (*PriceStore)(nil)
