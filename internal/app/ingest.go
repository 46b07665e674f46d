package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ladatajusta.ar/newsroom/internal/cli"
	"ladatajusta.ar/newsroom/internal/ingest"
	"ladatajusta.ar/newsroom/internal/staging"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 120*time.Second, "Command timeout")
	sourceMedia := fs.String("source-media", "", "Source media the files belong to (required)")
	scraperName := fs.String("scraper-name", "cli-ingest", "Scraper name recorded on the run")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*sourceMedia) == "" {
		fmt.Fprintln(os.Stderr, "--source-media is required")
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "ingest requires at least one JSON file argument")
		return 2
	}

	payloads := make([]json.RawMessage, 0, fs.NArg())
	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
			return 2
		}
		payloads = append(payloads, raw)
	}

	deps, err := connect(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer deps.close()

	store := staging.NewStore(deps.pool, deps.logger, deps.cfg.DefaultMaxRetries)
	gateway := ingest.NewGateway(store, deps.pool, deps.logger)

	batch, err := gateway.IngestBatch(deps.ctx, *sourceMedia, *scraperName, payloads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		return 1
	}

	if err := printJSON(batch); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	if batch.ErrorCount > 0 {
		return 1
	}
	return 0
}
