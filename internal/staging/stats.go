package staging

import (
	"context"
	"fmt"

	"ladatajusta.ar/newsroom/internal/db"
)

// Stats is a consistent snapshot of the staging table, read inside one
// REPEATABLE READ transaction so the counters agree with each other even
// while producers keep writing.
type Stats struct {
	TotalItems      int            `json:"total_items"`
	ByState         map[string]int `json:"by_state"`
	BySourceMedia   map[string]int `json:"by_source_media"`
	ReadyForAI      int            `json:"ready_for_ai"`
	ReadyToPublish  int            `json:"ready_to_publish"`
	Errored         int            `json:"errored"`
	RetriesMaxedOut int            `json:"retries_maxed_out"`
	AvgAITokens     float64        `json:"avg_ai_tokens"`
	TotalAICostUSD  float64        `json:"total_ai_cost_usd"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin stats transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ`); err != nil {
		return nil, fmt.Errorf("set stats isolation level: %w", err)
	}

	stats := &Stats{
		ByState:       make(map[string]int),
		BySourceMedia: make(map[string]int),
	}

	rows, err := tx.Query(ctx, `
		SELECT state, COUNT(*)
		FROM newsroom.staging_items
		GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("count items by state: %w", err)
	}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		stats.ByState[state] = n
		stats.TotalItems += n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}
	rows.Close()

	stats.ReadyForAI = stats.ByState[string(StateReadyForAI)]
	stats.ReadyToPublish = stats.ByState[string(StateReadyToPublish)]
	stats.Errored = stats.ByState[string(StateError)]

	rows, err = tx.Query(ctx, `
		SELECT source_media, COUNT(*)
		FROM newsroom.staging_items
		GROUP BY source_media
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("count items by source media: %w", err)
	}
	for rows.Next() {
		var media string
		var n int
		if err := rows.Scan(&media, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan source media count: %w", err)
		}
		stats.BySourceMedia[media] = n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate source media counts: %w", err)
	}
	rows.Close()

	err = tx.QueryRow(ctx, `
		SELECT
			COALESCE(AVG(ai_tokens_used), 0),
			COALESCE(SUM(ai_cost_usd), 0),
			COUNT(*) FILTER (WHERE state = $1 AND retry_count >= max_retries)
		FROM newsroom.staging_items`,
		string(StateError),
	).Scan(&stats.AvgAITokens, &stats.TotalAICostUSD, &stats.RetriesMaxedOut)
	if err != nil {
		return nil, fmt.Errorf("aggregate ai usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stats transaction: %w", err)
	}
	return stats, nil
}
