// Package news provides a freshness-gated read-through cache over provider news.
package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// OpNews names provider news failures in common.UpstreamError.
const OpNews = "EODHD news"

// Service implements interfaces.NewsService.
type Service struct {
	eodhd   interfaces.EODHDClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing

	group singleflight.Group
}

// NewService creates a new news service
func NewService(eodhd interfaces.EODHDClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		eodhd:   eodhd,
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetNews returns recent items from cache when fresh, otherwise fetches from
// the provider, stores the batch and returns it in provider order.
// Date-ranged requests always go to the provider.
func (s *Service) GetNews(ctx context.Context, req models.NewsRequest) ([]models.NewsItem, error) {
	symbol := common.NormalizeSymbol(req.Symbol, exchangeOrDefault(req.DefaultExchange))
	if symbol == "" {
		return []models.NewsItem{}, nil
	}
	limit := common.ClampInt(req.Limit, common.MinNewsLimit, common.MaxNewsLimit)
	now := s.now()

	if !req.Ranged() {
		cached, err := s.storage.NewsStore().Fresh(ctx, symbol, common.FreshnessCutoff(now, req.CacheHours), limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read news cache: %w", err)
		}
		if len(cached) > 0 {
			s.logger.Debug().Str("symbol", symbol).Int("items", len(cached)).Msg("News cache hit")
			return cached, nil
		}
	}

	from := req.From
	if from.IsZero() {
		from = common.RetentionCutoff(now, req.RetentionDays)
	}
	query := models.NewsQuery{Symbol: symbol, From: from, To: req.To, Limit: limit}

	// Concurrent misses for the same query share one provider round trip. The
	// shared fetch outlives any single caller; each caller waits on its own ctx.
	key := fmt.Sprintf("%s|%s|%s|%d", symbol, dateKey(query.From), dateKey(query.To), limit)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), query, now)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug().Str("symbol", symbol).Msg("News fetch shared with concurrent caller")
		}
		return res.Val.([]models.NewsItem), nil
	}
}

func (s *Service) fetch(ctx context.Context, query models.NewsQuery, now time.Time) ([]models.NewsItem, error) {
	rows, err := s.eodhd.GetNews(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, common.NewUpstreamError(OpNews, err)
	}

	items := make([]models.NewsItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.NewsItemFromProvider(query.Symbol, row, now))
	}
	if len(items) == 0 {
		return items, nil
	}

	if _, err := s.storage.NewsStore().UpsertNews(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to store news: %w", err)
	}

	s.logger.Info().Str("symbol", query.Symbol).Int("items", len(items)).Msg("News fetched from provider")
	return items, nil
}

func exchangeOrDefault(exchange string) string {
	if exchange == "" {
		return "US"
	}
	return exchange
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Compile-time check
var _ interfaces.NewsService = (*Service)(nil)
