package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ladatajusta.ar/newsroom/internal/cli"
	"ladatajusta.ar/newsroom/internal/globaltime"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")

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

	var one int
	if err := deps.pool.QueryRow(deps.ctx, `SELECT 1`).Scan(&one); err != nil {
		fmt.Fprintf(os.Stderr, "Database check failed: %v\n", err)
		return 1
	}

	fmt.Printf("ok %s\n", globaltime.UTC().Format(time.RFC3339))
	return 0
}
