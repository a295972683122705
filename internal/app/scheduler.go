package app

import (
	"context"
	"time"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
)

// startNewsPurge deletes news past the retention window on a fixed interval.
func startNewsPurge(ctx context.Context, store interfaces.NewsStore, config common.NewsConfig, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("News purge: stopped")
			return
		case <-ticker.C:
			PurgeNews(ctx, store, config.RetentionDays, logger)
		}
	}
}

// PurgeNews runs one retention pass and returns the number of items removed.
func PurgeNews(ctx context.Context, store interfaces.NewsStore, retentionDays int, logger *common.Logger) (int, error) {
	start := time.Now()
	cutoff := common.RetentionCutoff(start.UTC(), retentionDays)

	n, err := store.PurgeExpired(ctx, cutoff)
	if err != nil {
		logger.Warn().Err(err).Msg("News purge: failed")
		return 0, err
	}

	logger.Info().
		Int("deleted", n).
		Time("cutoff", cutoff).
		Dur("elapsed", time.Since(start)).
		Msg("News purge: complete")
	return n, nil
}

// startSessionSweep drops expired sessions on a fixed interval.
func startSessionSweep(ctx context.Context, cache interfaces.SessionCache, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Session sweep: stopped")
			return
		case <-ticker.C:
			cache.Sweep()
		}
	}
}

// sessionSweepInterval sweeps a few times per TTL, at most once a minute.
func sessionSweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}
