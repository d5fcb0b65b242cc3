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

	DatabaseURL      string // 接続文字列（あれば最優先）
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SMTPHost     string // メールサーバー
	SMTPPort     int    // メールポート（465）
	SMTPUsername string // SMTPユーザー
	SMTPPassword string // SMTPパスワード
	SMTPFrom     string // 送信元アドレス

	GoEnv       string // dev/prod
	FrontendURL string // フロントURL（CORSと再設定リンクで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	smtpPort, err := atoiDefault("SMTP_PORT", 465)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "expnote"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		SMTPHost:     getenv("SMTP_HOST", "smtp.qq.com"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getenv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),

		GoEnv:       getenv("GO_ENV", "development"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5173"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// DatabaseDSN はgormに渡す接続文字列。DATABASE_URLがあれば最優先で使う。
func (c Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
