package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ladatajusta.ar/newsroom/internal/globaltime"
)

const (
	runStatusRunning   = "running"
	runStatusCompleted = "completed"
	runStatusFailed    = "failed"
)

// Run is one row of the scraping run ledger.
type Run struct {
	ID           string     `json:"id"`
	SourceMedia  string     `json:"source_media"`
	ScraperName  string     `json:"scraper_name"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	ItemsFound   int        `json:"items_found"`
	ItemsNew     int        `json:"items_new"`
	ItemsUpdated int        `json:"items_updated"`
	ErrorCount   int        `json:"error_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

func (g *Gateway) insertRun(ctx context.Context, sourceMedia, scraperName string, itemsFound int) (string, error) {
	runID := uuid.NewString()
	now := globaltime.UTC()

	_, err := g.pool.Exec(ctx, `
		INSERT INTO newsroom.scraping_runs (
			id, source_media, scraper_name, started_at, status,
			items_found, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $4, $4)`,
		runID, sourceMedia, scraperName, now, runStatusRunning, itemsFound,
	)
	if err != nil {
		return "", fmt.Errorf("insert scraping run: %w", err)
	}
	return runID, nil
}

// runOutcome decides how a finished batch closes its run: a batch whose
// payloads were all rejected ends the run as failed, anything else completes.
func runOutcome(batch *BatchResult) (string, *string) {
	if batch.ItemsFound > 0 && batch.ErrorCount == batch.ItemsFound {
		msg := fmt.Sprintf("all %d payloads rejected", batch.ErrorCount)
		return runStatusFailed, &msg
	}
	return runStatusCompleted, nil
}

func (g *Gateway) finishRun(ctx context.Context, runID string, batch *BatchResult) error {
	status, errorMessage := runOutcome(batch)
	now := globaltime.UTC()
	_, err := g.pool.Exec(ctx, `
		UPDATE newsroom.scraping_runs
		SET status = $2,
		    finished_at = $3,
		    items_new = $4,
		    items_updated = $5,
		    error_count = $6,
		    error_message = $7,
		    updated_at = $3
		WHERE id = $1`,
		runID, status, now, batch.ItemsNew, batch.ItemsUpdated, batch.ErrorCount, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("finish scraping run: %w", err)
	}
	return nil
}

// MarkRunFailed closes a run that could not finish, keeping whatever
// counters were written before the failure.
func (g *Gateway) MarkRunFailed(ctx context.Context, runID, message string) error {
	now := globaltime.UTC()
	_, err := g.pool.Exec(ctx, `
		UPDATE newsroom.scraping_runs
		SET status = $2,
		    finished_at = $3,
		    error_message = $4,
		    updated_at = $3
		WHERE id = $1`,
		runID, runStatusFailed, now, message,
	)
	if err != nil {
		return fmt.Errorf("mark scraping run failed: %w", err)
	}
	return nil
}

// ListRuns returns the most recent scraping runs, newest first.
func (g *Gateway) ListRuns(ctx context.Context, sourceMedia string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := g.pool.Query(ctx, `
		SELECT id, source_media, scraper_name, started_at, finished_at, status,
		       items_found, items_new, items_updated, error_count, error_message
		FROM newsroom.scraping_runs
		WHERE ($1 = '' OR source_media = $1)
		ORDER BY started_at DESC, id DESC
		LIMIT $2`,
		sourceMedia, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list scraping runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		err := rows.Scan(
			&r.ID, &r.SourceMedia, &r.ScraperName, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.ItemsFound, &r.ItemsNew, &r.ItemsUpdated, &r.ErrorCount, &r.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan scraping run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraping runs: %w", err)
	}
	return runs, nil
}
