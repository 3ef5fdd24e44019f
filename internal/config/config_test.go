package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLowStockThreshold(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("未設定なら既定値5", func(t *testing.T) {
		t.Setenv("LOW_STOCK_THRESHOLD", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(5), cfg.LowStockThreshold)
	})

	t.Run("環境変数で上書き", func(t *testing.T) {
		t.Setenv("LOW_STOCK_THRESHOLD", "12")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(12), cfg.LowStockThreshold)
	})

	t.Run("数値以外はエラー", func(t *testing.T) {
		t.Setenv("LOW_STOCK_THRESHOLD", "lots")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
