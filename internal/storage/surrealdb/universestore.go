package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// UniverseStore implements interfaces.UniverseStore using SurrealDB.
type UniverseStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewUniverseStore creates a new UniverseStore.
func NewUniverseStore(db *surrealdb.DB, logger *common.Logger) *UniverseStore {
	return &UniverseStore{db: db, logger: logger}
}

func universeRecordID(exchange, code string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(tableUniverse, []any{exchange, code})
}

type universeKey struct {
	Exchange string `json:"exchange"`
	Code     string `json:"code"`
}

// UpsertUniverse replaces entries and returns the number of keys that were not
// present before the batch.
func (s *UniverseStore) UpsertUniverse(ctx context.Context, entries []models.UniverseEntry) (int, error) {
	ops := make([]upsertOp, 0, len(entries))
	keys := make([]universeKey, 0, len(entries))
	rids := make([]surrealmodels.RecordID, 0, len(entries))
	for _, e := range entries {
		if e.Exchange == "" || e.Code == "" {
			continue
		}
		rid := universeRecordID(e.Exchange, e.Code)
		ops = append(ops, upsertOp{rid: rid, doc: e})
		keys = append(keys, universeKey{Exchange: e.Exchange, Code: e.Code})
		rids = append(rids, rid)
	}
	if len(ops) == 0 {
		return 0, nil
	}

	existing, err := s.existingKeys(ctx, rids)
	if err != nil {
		return 0, err
	}

	ok, err := runUpserts(ctx, s.db, ops)

	inserted := 0
	seen := make(map[universeKey]bool, len(keys))
	for i, k := range keys {
		if ok[i] && !existing[k] && !seen[k] {
			inserted++
		}
		seen[k] = true
	}

	if err != nil {
		return inserted, fmt.Errorf("failed to upsert universe: %w", err)
	}
	return inserted, nil
}

func (s *UniverseStore) existingKeys(ctx context.Context, rids []surrealmodels.RecordID) (map[universeKey]bool, error) {
	sql := "SELECT exchange, code FROM $rids"
	results, err := surrealdb.Query[[]universeKey](ctx, s.db, sql, map[string]any{"rids": rids})
	if err != nil {
		return nil, fmt.Errorf("failed to probe universe keys: %w", err)
	}
	found := make(map[universeKey]bool)
	if results != nil && len(*results) > 0 {
		for _, k := range (*results)[0].Result {
			found[k] = true
		}
	}
	return found, nil
}

func (s *UniverseStore) Top(ctx context.Context, limit int) ([]models.UniverseEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	sql := "SELECT * FROM universe ORDER BY market_capitalization DESC LIMIT $limit"
	results, err := surrealdb.Query[[]models.UniverseEntry](ctx, s.db, sql, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to read universe: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// Compile-time check
var _ interfaces.UniverseStore = (*UniverseStore)(nil)
