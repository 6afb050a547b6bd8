package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     string // DBポート（5432）

	SessionSecret string // カートセッションCookieの署名シークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	ShippingRates string // 送料表のJSON（空なら既定の表）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     os.Getenv("POSTGRES_PORT"),

		SessionSecret: os.Getenv("SESSION_SECRET"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),

		ShippingRates: os.Getenv("SHIPPING_RATES"),
	}

	//必須チェック（DB関連はDATABASE_URL/デフォルトで補えるので任意）
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}
