package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCutoffs(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(-24*time.Hour), FreshnessCutoff(now, 24))
	assert.Equal(t, now.Add(-24*time.Hour), FreshnessCutoff(now, 0))
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), RetentionCutoff(now, 30))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, ClampInt(0, 1, 50))
	assert.Equal(t, 50, ClampInt(99, 1, 50))
	assert.Equal(t, 7, ClampInt(7, 1, 50))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("  ")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}
