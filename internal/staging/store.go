package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ladatajusta.ar/newsroom/internal/db"
	"ladatajusta.ar/newsroom/internal/globaltime"
)

const itemColumns = `
	id, source_media, source_section, source_url, source_url_normalized, canonical_url,
	title, subtitle, summary, content, raw_html, author, article_date,
	tags, image_urls, video_urls, language,
	content_hash, url_hash,
	state, state_updated_at, state_message,
	ai_title, ai_summary, ai_tags, ai_category, ai_model, ai_prompt_version,
	ai_tokens_used, ai_cost_usd, ai_processed_at, ai_processing_duration_ms, ai_metadata,
	retry_count, max_retries, last_error, last_error_at, error_trace,
	publication_id, published_at, published_by,
	scraper_name, scraper_version, scraping_run_id, scraping_duration_ms,
	extra_metadata, scraped_at, created_at, updated_at, created_by, updated_by`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*db.StagingItem, error) {
	var it db.StagingItem
	err := s.Scan(
		&it.ID, &it.SourceMedia, &it.SourceSection, &it.SourceURL, &it.SourceURLNormalized, &it.CanonicalURL,
		&it.Title, &it.Subtitle, &it.Summary, &it.Content, &it.RawHTML, &it.Author, &it.ArticleDate,
		&it.Tags, &it.ImageURLs, &it.VideoURLs, &it.Language,
		&it.ContentHash, &it.URLHash,
		&it.State, &it.StateUpdatedAt, &it.StateMessage,
		&it.AITitle, &it.AISummary, &it.AITags, &it.AICategory, &it.AIModel, &it.AIPromptVersion,
		&it.AITokensUsed, &it.AICostUSD, &it.AIProcessedAt, &it.AIProcessingDurationMS, &it.AIMetadata,
		&it.RetryCount, &it.MaxRetries, &it.LastError, &it.LastErrorAt, &it.ErrorTrace,
		&it.PublicationID, &it.PublishedAt, &it.PublishedBy,
		&it.ScraperName, &it.ScraperVersion, &it.ScrapingRunID, &it.ScrapingDurationMS,
		&it.ExtraMetadata, &it.ScrapedAt, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy, &it.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Store owns every read and write against newsroom.staging_items and is the
// only code allowed to change an item's state column.
type Store struct {
	pool              *db.Pool
	logger            zerolog.Logger
	defaultMaxRetries int
}

func NewStore(pool *db.Pool, logger zerolog.Logger, defaultMaxRetries int) *Store {
	if defaultMaxRetries <= 0 {
		defaultMaxRetries = 3
	}
	return &Store{
		pool:              pool,
		logger:            logger.With().Str("component", "staging-store").Logger(),
		defaultMaxRetries: defaultMaxRetries,
	}
}

func (s *Store) Pool() *db.Pool { return s.pool }

// UpsertResult reports what a write through Upsert actually did.
type UpsertResult struct {
	ID       string
	Inserted bool
}

// Upsert inserts a new staging item or, when an item with the same url_hash
// already exists, refreshes its scraped content in place. The existing item
// keeps its id, state, scraped_at and every AI field; only the scraper-owned
// columns are overwritten. This is what makes producer retries idempotent.
func (s *Store) Upsert(ctx context.Context, it *db.StagingItem) (UpsertResult, error) {
	if it == nil {
		return UpsertResult{}, fmt.Errorf("staging item is nil")
	}
	if it.URLHash == "" || it.ContentHash == "" {
		return UpsertResult{}, fmt.Errorf("%w: item is missing url or content hash", ErrInvalidState)
	}

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.MaxRetries <= 0 {
		it.MaxRetries = s.defaultMaxRetries
	}
	now := globaltime.UTC()
	if it.ScrapedAt.IsZero() {
		it.ScrapedAt = now
	}
	if it.State == "" {
		it.State = string(StateScraped)
	}

	query := `
		INSERT INTO newsroom.staging_items (
			id, source_media, source_section, source_url, source_url_normalized, canonical_url,
			title, subtitle, summary, content, raw_html, author, article_date,
			tags, image_urls, video_urls, language,
			content_hash, url_hash,
			state, state_updated_at, max_retries,
			scraper_name, scraper_version, scraping_run_id, scraping_duration_ms,
			extra_metadata, scraped_at, created_at, updated_at, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19,
			$20, $21, $22,
			$23, $24, $25, $26,
			$27, $28, $29, $30, $31
		)
		ON CONFLICT (url_hash) DO UPDATE SET
			source_section = EXCLUDED.source_section,
			canonical_url = EXCLUDED.canonical_url,
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			summary = EXCLUDED.summary,
			content = EXCLUDED.content,
			raw_html = EXCLUDED.raw_html,
			author = EXCLUDED.author,
			article_date = EXCLUDED.article_date,
			tags = EXCLUDED.tags,
			image_urls = EXCLUDED.image_urls,
			video_urls = EXCLUDED.video_urls,
			language = COALESCE(EXCLUDED.language, newsroom.staging_items.language),
			content_hash = EXCLUDED.content_hash,
			scraper_name = EXCLUDED.scraper_name,
			scraper_version = EXCLUDED.scraper_version,
			scraping_run_id = EXCLUDED.scraping_run_id,
			scraping_duration_ms = EXCLUDED.scraping_duration_ms,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted`

	var res UpsertResult
	err := s.pool.QueryRow(ctx, query,
		it.ID, it.SourceMedia, it.SourceSection, it.SourceURL, it.SourceURLNormalized, it.CanonicalURL,
		it.Title, it.Subtitle, it.Summary, it.Content, it.RawHTML, it.Author, it.ArticleDate,
		jsonOrNull(it.Tags), jsonOrNull(it.ImageURLs), jsonOrNull(it.VideoURLs), it.Language,
		it.ContentHash, it.URLHash,
		it.State, now, it.MaxRetries,
		it.ScraperName, it.ScraperVersion, it.ScrapingRunID, it.ScrapingDurationMS,
		jsonOrNull(it.ExtraMetadata), it.ScrapedAt, now, now, it.CreatedBy,
	).Scan(&res.ID, &res.Inserted)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert staging item: %w", classifyStoreError(err))
	}

	s.logger.Debug().
		Str("item_id", res.ID).
		Bool("inserted", res.Inserted).
		Str("source_media", it.SourceMedia).
		Msg("staging item upserted")

	return res, nil
}

// Create inserts a brand new item and fails with ErrDuplicateURL when the
// url_hash is already staged. Used by callers that must know about the
// collision instead of silently refreshing the existing row.
func (s *Store) Create(ctx context.Context, it *db.StagingItem) (*db.StagingItem, error) {
	if it == nil {
		return nil, fmt.Errorf("staging item is nil")
	}
	if it.URLHash == "" || it.ContentHash == "" {
		return nil, fmt.Errorf("%w: item is missing url or content hash", ErrInvalidState)
	}

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.MaxRetries <= 0 {
		it.MaxRetries = s.defaultMaxRetries
	}
	now := globaltime.UTC()
	if it.ScrapedAt.IsZero() {
		it.ScrapedAt = now
	}

	query := `
		INSERT INTO newsroom.staging_items (
			id, source_media, source_section, source_url, source_url_normalized, canonical_url,
			title, subtitle, summary, content, raw_html, author, article_date,
			tags, image_urls, video_urls, language,
			content_hash, url_hash,
			state, state_updated_at, max_retries,
			scraper_name, scraper_version, scraping_run_id, scraping_duration_ms,
			extra_metadata, scraped_at, created_at, updated_at, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19,
			$20, $21, $22,
			$23, $24, $25, $26,
			$27, $28, $29, $30, $31
		)
		RETURNING ` + itemColumns

	row := s.pool.QueryRow(ctx, query,
		it.ID, it.SourceMedia, it.SourceSection, it.SourceURL, it.SourceURLNormalized, it.CanonicalURL,
		it.Title, it.Subtitle, it.Summary, it.Content, it.RawHTML, it.Author, it.ArticleDate,
		jsonOrNull(it.Tags), jsonOrNull(it.ImageURLs), jsonOrNull(it.VideoURLs), it.Language,
		it.ContentHash, it.URLHash,
		string(StateScraped), now, it.MaxRetries,
		it.ScraperName, it.ScraperVersion, it.ScrapingRunID, it.ScrapingDurationMS,
		jsonOrNull(it.ExtraMetadata), it.ScrapedAt, now, now, it.CreatedBy,
	)

	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create staging item: %w", classifyStoreError(err))
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id string) (*db.StagingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM newsroom.staging_items WHERE id = $1`
	it, err := scanItem(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("staging item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get staging item: %w", err)
	}
	return it, nil
}

// GetByURLHash resolves the item staged for a normalized URL, if any.
func (s *Store) GetByURLHash(ctx context.Context, urlHash string) (*db.StagingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM newsroom.staging_items WHERE url_hash = $1`
	it, err := scanItem(s.pool.QueryRow(ctx, query, urlHash))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("url hash %s: %w", urlHash, ErrNotFound)
		}
		return nil, fmt.Errorf("get staging item by url hash: %w", err)
	}
	return it, nil
}

// Filter narrows List. Zero values mean "no constraint". HasErrors selects
// items that have (or have not) failed at least once, regardless of their
// current state.
type Filter struct {
	State       State
	SourceMedia string
	Language    string
	Search      string
	HasErrors   *bool
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f Filter) normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// List returns a page of items newest first plus the total row count for the
// same filter.
func (s *Store) List(ctx context.Context, f Filter) ([]db.StagingItem, int, error) {
	f = f.normalized()
	if f.State != "" {
		if _, err := ParseState(string(f.State)); err != nil {
			return nil, 0, err
		}
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM newsroom.staging_items
		WHERE ($1 = '' OR state = $1)
		  AND ($2 = '' OR source_media = $2)
		  AND ($3 = '' OR language = $3)
		  AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR content ILIKE '%' || $4 || '%')
		  AND ($5::timestamptz IS NULL OR scraped_at >= $5)
		  AND ($6::timestamptz IS NULL OR scraped_at <= $6)
		  AND ($7::boolean IS NULL OR (last_error IS NOT NULL OR retry_count > 0) = $7)`
	err := s.pool.QueryRow(ctx, countQuery,
		string(f.State), f.SourceMedia, f.Language, f.Search,
		nullableTime(f.Since), nullableTime(f.Until), nullableBool(f.HasErrors),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count staging items: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM newsroom.staging_items
		WHERE ($1 = '' OR state = $1)
		  AND ($2 = '' OR source_media = $2)
		  AND ($3 = '' OR language = $3)
		  AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR content ILIKE '%' || $4 || '%')
		  AND ($5::timestamptz IS NULL OR scraped_at >= $5)
		  AND ($6::timestamptz IS NULL OR scraped_at <= $6)
		  AND ($7::boolean IS NULL OR (last_error IS NOT NULL OR retry_count > 0) = $7)
		ORDER BY scraped_at DESC, id DESC
		LIMIT $8 OFFSET $9`

	rows, err := s.pool.Query(ctx, query,
		string(f.State), f.SourceMedia, f.Language, f.Search,
		nullableTime(f.Since), nullableTime(f.Until), nullableBool(f.HasErrors),
		f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list staging items: %w", err)
	}
	defer rows.Close()

	items := make([]db.StagingItem, 0, f.Limit)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan staging item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate staging items: %w", err)
	}

	return items, total, nil
}

// Delete removes an item permanently. Published items are never deletable;
// their publication record points back at them.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM newsroom.staging_items
		WHERE id = $1 AND state <> $2`, id, string(StatePublished))
	if err != nil {
		return fmt.Errorf("delete staging item: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing deleted: either the id does not exist or it is published.
	var state string
	err = s.pool.QueryRow(ctx,
		`SELECT state FROM newsroom.staging_items WHERE id = $1`, id).Scan(&state)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("staging item %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete staging item: %w", err)
	}
	return fmt.Errorf("staging item %s: %w", id, ErrCannotDeletePublished)
}

// MarkDuplicates collapses items that share a content_hash: the earliest
// scraped copy per hash survives, every later copy in a non-terminal state is
// moved to the duplicate state. Ranking runs over all copies, so a later
// re-scrape of an already published article still gets flagged. Returns how
// many items were marked.
func (s *Store) MarkDuplicates(ctx context.Context, updatedBy string) (int64, error) {
	now := globaltime.UTC()
	tag, err := s.pool.Exec(ctx, `
		WITH ranked AS (
			SELECT id,
			       ROW_NUMBER() OVER (
			           PARTITION BY content_hash
			           ORDER BY scraped_at ASC, id ASC
			       ) AS rn
			FROM newsroom.staging_items
		)
		UPDATE newsroom.staging_items AS si
		SET state = $4,
		    state_updated_at = $5,
		    state_message = 'same content_hash as an earlier item',
		    updated_at = $5,
		    updated_by = NULLIF($6, '')
		FROM ranked
		WHERE si.id = ranked.id
		  AND ranked.rn > 1
		  AND si.state NOT IN ($1, $2, $3)`,
		string(StatePublished), string(StateDiscarded), string(StateDuplicate),
		string(StateDuplicate), now, updatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("mark duplicate staging items: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		s.logger.Info().Int64("marked", n).Msg("duplicate staging items collapsed")
		return n, nil
	}
	return 0, nil
}

func jsonOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

// classifyStoreError maps low-level postgres failures onto the store's error
// taxonomy. Unique violations on url_hash mean a concurrent producer staged
// the same URL first.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLSTATE 23505"), strings.Contains(msg, "duplicate key value"):
		return fmt.Errorf("%w: %s", ErrDuplicateURL, msg)
	case strings.Contains(msg, "SQLSTATE 40001"), strings.Contains(msg, "SQLSTATE 40P01"):
		return fmt.Errorf("%w: %s", ErrTransientStore, msg)
	default:
		return err
	}
}
