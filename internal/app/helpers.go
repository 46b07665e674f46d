package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ladatajusta.ar/newsroom/internal/cli"
	"ladatajusta.ar/newsroom/internal/config"
	"ladatajusta.ar/newsroom/internal/db"
	"ladatajusta.ar/newsroom/internal/logging"

	"github.com/rs/zerolog"
)

// runtimeDeps is everything a database-backed subcommand needs.
type runtimeDeps struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	pool   *db.Pool
	logger zerolog.Logger
}

func (d *runtimeDeps) close() {
	if d == nil {
		return
	}
	if d.pool != nil {
		_ = d.pool.Close()
	}
	if d.cancel != nil {
		d.cancel()
	}
}

// connect loads env + config, builds the logger and opens the database pool
// under one timeout. Callers own close().
func connect(timeout time.Duration, envLoader *cli.EnvLoader) (*runtimeDeps, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &runtimeDeps{ctx: ctx, cancel: cancel, cfg: cfg, pool: pool, logger: logger}, nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
