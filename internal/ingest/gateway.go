// Package ingest is the write gateway for scraper payloads: it validates,
// normalizes and hashes incoming articles and hands them to the staging
// store as idempotent upserts.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ladatajusta.ar/newsroom/internal/db"
	"ladatajusta.ar/newsroom/internal/globaltime"
	"ladatajusta.ar/newsroom/internal/hashing"
	"ladatajusta.ar/newsroom/internal/langdetect"
	"ladatajusta.ar/newsroom/internal/reader"
	"ladatajusta.ar/newsroom/internal/staging"
	payloadschema "ladatajusta.ar/newsroom/schema"
)

type Gateway struct {
	store  *staging.Store
	pool   *db.Pool
	logger zerolog.Logger
}

func NewGateway(store *staging.Store, pool *db.Pool, logger zerolog.Logger) *Gateway {
	return &Gateway{
		store:  store,
		pool:   pool,
		logger: logger.With().Str("component", "ingest-gateway").Logger(),
	}
}

// Result reports what happened to a single ingested article.
type Result struct {
	ItemID   string `json:"item_id"`
	Inserted bool   `json:"inserted"`
}

// IngestPayload validates a raw producer payload and ingests it.
func (g *Gateway) IngestPayload(ctx context.Context, payload json.RawMessage, runID *string) (Result, error) {
	article, err := payloadschema.ValidateScrapedArticlePayload(payload)
	if err != nil {
		return Result{}, fmt.Errorf("invalid scraped article payload: %w", err)
	}
	return g.IngestArticle(ctx, article, runID)
}

// IngestArticle stages one validated article. The same article delivered
// twice, or delivered concurrently by competing scrapers, converges on one
// staging item keyed by the normalized URL hash.
func (g *Gateway) IngestArticle(ctx context.Context, article *payloadschema.ScrapedArticle, runID *string) (Result, error) {
	if article == nil {
		return Result{}, fmt.Errorf("article is nil")
	}

	normalizedURL := hashing.NormalizeURL(article.URL)
	if normalizedURL == "" {
		return Result{}, fmt.Errorf("article url %q cannot be normalized", article.URL)
	}

	content := ""
	if article.Content != nil {
		content = strings.TrimSpace(*article.Content)
	}
	if content == "" && article.RawHTML != nil {
		extracted, err := reader.ExtractText(*article.RawHTML, article.URL)
		if err != nil {
			return Result{}, fmt.Errorf("extract article text: %w", err)
		}
		content = extracted
	}
	if content == "" {
		return Result{}, fmt.Errorf("article has no usable content")
	}

	language := article.Language
	if language == nil || strings.TrimSpace(*language) == "" {
		if code := langdetect.DetectISO6391(content); code != "" {
			language = &code
		} else {
			language = nil
		}
	}

	item := &db.StagingItem{
		SourceMedia:         article.SourceMedia,
		SourceSection:       article.SourceSection,
		SourceURL:           article.URL,
		SourceURLNormalized: normalizedURL,
		CanonicalURL:        article.CanonicalURL,
		Title:               article.Title,
		Subtitle:            article.Subtitle,
		Summary:             article.Summary,
		Content:             content,
		RawHTML:             article.RawHTML,
		Author:              article.Author,
		Language:            language,
		ContentHash:         hashing.ContentHash(content),
		URLHash:             hashing.URLHash(normalizedURL),
		ScraperName:         article.ScraperName,
		ScraperVersion:      article.ScraperVersion,
		ScrapingRunID:       runID,
		ScrapingDurationMS:  article.ScrapingDurationMS,
		Tags:                marshalStrings(article.Tags),
		ImageURLs:           marshalStrings(article.ImageURLs),
		VideoURLs:           marshalStrings(article.VideoURLs),
		ExtraMetadata:       marshalMap(article.ExtraMetadata),
	}
	if article.ArticleDate != nil {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*article.ArticleDate)); err == nil {
			utc := parsed.UTC()
			// Future-dated articles are a scraper bug; keep the item, drop
			// the date.
			if !utc.After(globaltime.UTC()) {
				item.ArticleDate = &utc
			}
		}
	}

	res, err := g.store.Upsert(ctx, item)
	if err != nil {
		return Result{}, err
	}

	return Result{ItemID: res.ID, Inserted: res.Inserted}, nil
}

// BatchResult summarizes one producer delivery.
type BatchResult struct {
	RunID        string       `json:"run_id"`
	ItemsFound   int          `json:"items_found"`
	ItemsNew     int          `json:"items_new"`
	ItemsUpdated int          `json:"items_updated"`
	ErrorCount   int          `json:"error_count"`
	Results      []Result     `json:"results"`
	Errors       []BatchError `json:"errors,omitempty"`
}

// BatchError records a single rejected payload without failing the batch.
type BatchError struct {
	Index int    `json:"index"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// IngestBatch stages a producer delivery under one scraping run. Individual
// payload failures are recorded in the run ledger and do not abort the rest
// of the batch.
func (g *Gateway) IngestBatch(ctx context.Context, sourceMedia, scraperName string, payloads []json.RawMessage) (*BatchResult, error) {
	if strings.TrimSpace(sourceMedia) == "" {
		return nil, fmt.Errorf("source_media is required")
	}
	if strings.TrimSpace(scraperName) == "" {
		return nil, fmt.Errorf("scraper_name is required")
	}

	runID, err := g.insertRun(ctx, sourceMedia, scraperName, len(payloads))
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		RunID:      runID,
		ItemsFound: len(payloads),
		Results:    make([]Result, 0, len(payloads)),
	}

	for i, payload := range payloads {
		res, err := g.IngestPayload(ctx, payload, &runID)
		if err != nil {
			batch.ErrorCount++
			batch.Errors = append(batch.Errors, BatchError{
				Index: i,
				URL:   peekURL(payload),
				Error: err.Error(),
			})
			g.logger.Warn().
				Err(err).
				Str("run_id", runID).
				Int("index", i).
				Msg("payload rejected during batch ingest")
			continue
		}
		batch.Results = append(batch.Results, res)
		if res.Inserted {
			batch.ItemsNew++
		} else {
			batch.ItemsUpdated++
		}
	}

	if err := g.finishRun(ctx, runID, batch); err != nil {
		// Don't leave the run stuck in running when the counter write fails.
		if failErr := g.MarkRunFailed(ctx, runID, err.Error()); failErr != nil {
			g.logger.Error().Err(failErr).Str("run_id", runID).Msg("scraping run could not be closed")
		}
		return nil, err
	}

	g.logger.Info().
		Str("run_id", runID).
		Str("source_media", sourceMedia).
		Int("found", batch.ItemsFound).
		Int("new", batch.ItemsNew).
		Int("updated", batch.ItemsUpdated).
		Int("errors", batch.ErrorCount).
		Msg("scraping batch ingested")

	return batch, nil
}

func marshalStrings(values []string) json.RawMessage {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return raw
}

func marshalMap(values map[string]any) json.RawMessage {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return raw
}

// peekURL best-effort extracts the url field of a rejected payload for the
// error report.
func peekURL(payload json.RawMessage) string {
	var probe struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return probe.URL
}
