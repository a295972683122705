package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// NewsStore implements interfaces.NewsStore using SurrealDB.
type NewsStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewNewsStore creates a new NewsStore.
func NewNewsStore(db *surrealdb.DB, logger *common.Logger) *NewsStore {
	return &NewsStore{db: db, logger: logger}
}

// keyCondition renders the WHERE clause matching a dedup key. Variables are
// suffixed with i so several lookups can share one query.
func keyCondition(k models.NewsKey, i int, vars map[string]any) string {
	sym := fmt.Sprintf("symbol%d", i)
	vars[sym] = k.Symbol
	switch k.Kind {
	case models.NewsKeyURL:
		vars[fmt.Sprintf("url%d", i)] = k.URL
		return fmt.Sprintf("symbol = $%s AND url = $url%d", sym, i)
	case models.NewsKeyTitleDate:
		vars[fmt.Sprintf("title%d", i)] = k.Title
		vars[fmt.Sprintf("date%d", i)] = k.Date
		return fmt.Sprintf("symbol = $%s AND title = $title%d AND date = $date%d", sym, i, i)
	default:
		vars[fmt.Sprintf("title%d", i)] = k.Title
		return fmt.Sprintf("symbol = $%s AND title = $title%d", sym, i)
	}
}

// resolveIDs finds the record each key already maps to. Keys with no match get
// an id derived from the key itself.
func (s *NewsStore) resolveIDs(ctx context.Context, keys []models.NewsKey) ([]surrealmodels.RecordID, error) {
	rids := make([]surrealmodels.RecordID, len(keys))
	for i, k := range keys {
		rids[i] = surrealmodels.NewRecordID(tableNews, k.RecordKey())
	}

	for start := 0; start < len(keys); start += batchChunkSize {
		end := min(start+batchChunkSize, len(keys))

		var sb strings.Builder
		vars := make(map[string]any)
		for i, k := range keys[start:end] {
			fmt.Fprintf(&sb, "SELECT VALUE id FROM news WHERE %s LIMIT 1;\n", keyCondition(k, i, vars))
		}

		results, err := surrealdb.Query[[]surrealmodels.RecordID](ctx, s.db, sb.String(), vars)
		if err != nil {
			return nil, fmt.Errorf("failed to look up news keys: %w", err)
		}
		if results == nil {
			continue
		}
		for i, res := range *results {
			if start+i < end && len(res.Result) > 0 {
				rids[start+i] = res.Result[0]
			}
		}
	}

	return rids, nil
}

// UpsertNews writes items under their dedup keys and returns the number of
// statements that succeeded.
func (s *NewsStore) UpsertNews(ctx context.Context, items []models.NewsItem) (int, error) {
	keep := make([]models.NewsItem, 0, len(items))
	keys := make([]models.NewsKey, 0, len(items))
	for _, item := range items {
		if item.Symbol == "" {
			continue
		}
		keep = append(keep, item)
		keys = append(keys, item.DedupKey())
	}
	if len(keep) == 0 {
		return 0, nil
	}

	rids, err := s.resolveIDs(ctx, keys)
	if err != nil {
		return 0, err
	}

	ops := make([]upsertOp, len(keep))
	for i, item := range keep {
		ops[i] = upsertOp{rid: rids[i], doc: item}
	}

	ok, err := runUpserts(ctx, s.db, ops)
	written := countTrue(ok)
	if err != nil {
		return written, fmt.Errorf("failed to upsert news: %w", err)
	}
	return written, nil
}

// Fresh returns items fetched at or after since, newest story first.
func (s *NewsStore) Fresh(ctx context.Context, symbol string, since time.Time, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	sql := "SELECT * FROM news WHERE symbol = $symbol AND fetched_at >= $since ORDER BY date DESC LIMIT $limit"
	vars := map[string]any{"symbol": symbol, "since": since, "limit": limit}

	results, err := surrealdb.Query[[]models.NewsItem](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to read news: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// PurgeExpired hard-deletes items fetched before the cutoff.
func (s *NewsStore) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	sql := "DELETE news WHERE fetched_at < $cutoff RETURN BEFORE"
	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, sql, map[string]any{"cutoff": before})
	if err != nil {
		return 0, fmt.Errorf("failed to purge news: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return 0, nil
	}

	n := len((*results)[0].Result)
	if n > 0 {
		s.logger.Info().Int("deleted", n).Time("before", before).Msg("Purged expired news")
	}
	return n, nil
}

// Compile-time check
var _ interfaces.NewsStore = (*NewsStore)(nil)
