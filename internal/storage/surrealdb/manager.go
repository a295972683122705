// Package surrealdb implements the time-series store on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
)

// Table names
const (
	tablePrices   = "prices_daily"
	tableUniverse = "universe"
	tableNews     = "news"
)

// schema is applied on every start; each statement is idempotent.
// SurrealDB v3 errors on querying tables that were never defined.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS prices_daily SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS prices_daily_symbol_date ON TABLE prices_daily FIELDS symbol, date UNIQUE",
	"DEFINE TABLE IF NOT EXISTS universe SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS universe_exchange_code ON TABLE universe FIELDS exchange, code UNIQUE",
	"DEFINE INDEX IF NOT EXISTS universe_market_cap ON TABLE universe FIELDS market_capitalization",
	"DEFINE TABLE IF NOT EXISTS news SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS news_symbol_fetched ON TABLE news FIELDS symbol, fetched_at",
	"DEFINE INDEX IF NOT EXISTS news_fetched_at ON TABLE news FIELDS fetched_at",
}

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	priceStore    *PriceStore
	universeStore *UniverseStore
	newsStore     *NewsStore
}

// NewManager connects to SurrealDB, applies the schema and builds the stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := NewManagerWithDB(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// NewManagerWithDB wraps an already selected connection.
func NewManagerWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	if err := defineSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Manager{
		db:            db,
		logger:        logger,
		priceStore:    NewPriceStore(db, logger),
		universeStore: NewUniverseStore(db, logger),
		newsStore:     NewNewsStore(db, logger),
	}, nil
}

func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) PriceStore() interfaces.PriceStore {
	return m.priceStore
}

func (m *Manager) UniverseStore() interfaces.UniverseStore {
	return m.universeStore
}

func (m *Manager) NewsStore() interfaces.NewsStore {
	return m.newsStore
}

func (m *Manager) Close() error {
	return m.db.Close(context.Background())
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
