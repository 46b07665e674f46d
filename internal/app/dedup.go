package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ladatajusta.ar/newsroom/internal/cli"
	"ladatajusta.ar/newsroom/internal/staging"
)

func runDedup(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	updatedBy := fs.String("updated-by", "cli-dedup", "Audit identity recorded on marked items")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	deps, err := connect(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer deps.close()

	store := staging.NewStore(deps.pool, deps.logger, deps.cfg.DefaultMaxRetries)
	marked, err := store.MarkDuplicates(deps.ctx, *updatedBy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to mark duplicates: %v\n", err)
		return 1
	}

	fmt.Printf("marked %d duplicate items\n", marked)
	return 0
}
