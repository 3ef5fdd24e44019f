package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod

	//在庫レポートの既定の閾値
	LowStockThreshold int64
}

// Loadは環境変数から読む。DB接続情報はdb.Connect側で読む
func Load() (Config, error) {
	cfg := Config{
		Port:              os.Getenv("PORT"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		GoEnv:             os.Getenv("GO_ENV"),
		LowStockThreshold: 5,
	}

	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD must be a non-negative integer: %q", raw)
		}
		cfg.LowStockThreshold = n
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GoEnv == "" {
		cfg.GoEnv = "dev"
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
