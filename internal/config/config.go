package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"NEWSROOM_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"NEWSROOM_DB_MAX_CONNS" default:"8"`

	// StoreTimeout bounds every staging-store operation issued by the HTTP
	// layer; a timeout surfaces as a transient failure, never a partial write.
	StoreTimeout time.Duration `envconfig:"NEWSROOM_STORE_TIMEOUT" default:"10s"`

	// DefaultMaxRetries seeds max_retries on newly staged items.
	DefaultMaxRetries int `envconfig:"NEWSROOM_DEFAULT_MAX_RETRIES" default:"3"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("NEWSROOM_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("NEWSROOM_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("NEWSROOM_DB_MIN_CONNS (%d) cannot exceed NEWSROOM_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.StoreTimeout < time.Second {
		return fmt.Errorf("NEWSROOM_STORE_TIMEOUT must be >= 1s")
	}
	if c.DefaultMaxRetries < 0 {
		return fmt.Errorf("NEWSROOM_DEFAULT_MAX_RETRIES must be >= 0")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
