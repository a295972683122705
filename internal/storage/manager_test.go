package storage

import (
	"testing"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestNewStorageManager_RequiresAddress(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Address = ""

	mgr, err := NewStorageManager(common.NewSilentLogger(), cfg)
	assert.Error(t, err)
	assert.Nil(t, mgr)
}
