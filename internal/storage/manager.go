// Package storage opens the configured StorageManager.
package storage

import (
	"fmt"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/storage/surrealdb"
)

// NewStorageManager connects to the configured SurrealDB instance.
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	if config.Storage.Address == "" {
		return nil, fmt.Errorf("storage address is not configured")
	}

	mgr, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return mgr, nil
}
