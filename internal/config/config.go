package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// セッションスロットの保存先
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort string `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	BaseURL    string `yaml:"base_url" env:"BASE_URL" env-required:"true"`

	// Backend
	BackendURL         string        `yaml:"backend_url" env:"BACKEND_URL" env-default:"http://localhost:8083/api/usuarios"`
	BackendTimeout     time.Duration `yaml:"backend_timeout" env:"BACKEND_TIMEOUT" env-default:"10s"`
	BackendAttachToken bool          `yaml:"backend_attach_token" env:"BACKEND_ATTACH_TOKEN" env-default:"false"`

	// Session
	SessionStore           string        `yaml:"session_store" env:"SESSION_STORE" env-default:"postgres"`
	DatabaseURL            string        `yaml:"database_url" env:"DATABASE_URL"`
	SessionMaxAge          int           `yaml:"session_max_age" env:"SESSION_MAX_AGE" env-default:"86400"`
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval" env:"SESSION_CLEANUP_INTERVAL" env-default:"1h"`

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int `yaml:"rate_limit_general" env:"RATE_LIMIT_GENERAL" env-default:"120"`
	RateLimitLogin   int `yaml:"rate_limit_login" env:"RATE_LIMIT_LOGIN" env-default:"10"`

	// Cookie
	CookieSecure bool   `yaml:"-"`
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `yaml:"cors_allowed_origin" env:"CORS_ALLOWED_ORIGIN" env-default:"http://localhost:4200"`

	// TrustProxyHeaders はリバースプロキシが付与するクライアントIPヘッダーを信用するかどうか。
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"TRUST_PROXY_HEADERS" env-default:"false"`
}

// Load は環境変数からConfigを読み込む。
// CONFIG_PATH が設定されている場合はYAMLファイルを読み込んだ上で環境変数を重ねる。
// 必須項目が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	return &cfg, nil
}

// validate は空文字で上書きされた必須項目や値の組み合わせを検証する。
func (c *Config) validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if c.SessionStore == SessionStorePostgres && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	switch c.SessionStore {
	case SessionStorePostgres, SessionStoreMemory:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStorePostgres, SessionStoreMemory, c.SessionStore)
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", c.SessionMaxAge)
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitLogin <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

// SessionMaxAgeDuration はセッション有効期間をtime.Durationで返す。
func (c *Config) SessionMaxAgeDuration() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// UsesDatabase はセッションスロットの保存にPostgreSQLを使うかどうかを返す。
func (c *Config) UsesDatabase() bool {
	return c.SessionStore == SessionStorePostgres
}
