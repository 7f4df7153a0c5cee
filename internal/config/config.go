package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int    `env:"PORT" envDefault:"3000"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Local store backend: sqlite, redis or memory.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./awakened.db"`
	RedisURL     string `env:"REDIS_URL"`
	RedisPrefix  string `env:"REDIS_PREFIX" envDefault:"aw:"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"awakened-dev-secret"`

	// The site has always shipped a single hardcoded editor account.
	AdminLogin    string `env:"ADMIN_LOGIN" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"awakened2024"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"editor@awakenedyouth.org"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Cron spec for the demo notification broadcast. Empty disables it.
	DemoBroadcast string `env:"DEMO_BROADCAST" envDefault:"@every 60s"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`

	// Set when running behind a reverse proxy that rewrites X-Forwarded-For.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// IsProduction reports whether cookies and logging should use production settings.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Load loads configuration from environment variables (and a .env file when present) or sets defaults.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case "sqlite", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "awakened-dev-secret" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}
