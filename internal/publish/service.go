// Package publish converts a staged item into a publication inside a single
// transaction. An item publishes at most once no matter how many operators
// race on it.
package publish

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
	"ladatajusta.ar/newsroom/internal/slug"
	"ladatajusta.ar/newsroom/internal/staging"
)

type Service struct {
	pool   *db.Pool
	logger zerolog.Logger
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return &Service{
		pool:   pool,
		logger: logger.With().Str("component", "publish-service").Logger(),
	}
}

// Request carries operator input for one publish. Overrides beat AI output,
// AI output beats the scraped original.
type Request struct {
	ItemID          string
	PublishedBy     string
	SignedBy        *string
	TitleOverride   *string
	SummaryOverride *string
	SlugOverride    *string
}

// Publication is the published record as returned to the caller.
type Publication struct {
	ID            string          `json:"id"`
	StagingItemID string          `json:"staging_item_id"`
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	Summary       string          `json:"summary"`
	Body          string          `json:"body"`
	Category      *string         `json:"category,omitempty"`
	Tags          json.RawMessage `json:"tags,omitempty"`
	SignedBy      *string         `json:"signed_by,omitempty"`
	PublishedBy   string          `json:"published_by"`
	PublishedAt   time.Time       `json:"published_at"`
}

// readingLevels are the depth variants an AI pass may have produced. They
// live under ai_metadata until publish lifts them into first-class columns.
type readingLevels struct {
	SinVueltas    *string `json:"sin_vueltas,omitempty"`
	LoCentral     *string `json:"lo_central,omitempty"`
	EnProfundidad *string `json:"en_profundidad,omitempty"`
}

// Publish runs the publish transaction: lock the item, verify it is in
// ready_to_publish and not yet linked to a publication, insert the
// publication row and flip the item to published. Either both writes commit
// or neither does.
func (s *Service) Publish(ctx context.Context, req Request) (*Publication, error) {
	if strings.TrimSpace(req.ItemID) == "" {
		return nil, fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(req.PublishedBy) == "" {
		return nil, fmt.Errorf("published_by is required")
	}

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin publish transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := lockItem(ctx, tx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if item.PublicationID != nil {
		return nil, fmt.Errorf("staging item %s: %w", req.ItemID, staging.ErrAlreadyPublished)
	}
	if item.State != string(staging.StateReadyToPublish) {
		return nil, fmt.Errorf("staging item %s is %s, publish requires %s: %w",
			req.ItemID, item.State, staging.StateReadyToPublish, staging.ErrInvalidState)
	}

	pub := buildPublication(item, req)
	pub.Slug, err = resolveSlug(ctx, tx, pub.Slug, item.ID)
	if err != nil {
		return nil, err
	}

	now := globaltime.UTC()
	pub.PublishedAt = now

	levels := extractReadingLevels(item.AIMetadata)

	_, err = tx.Exec(ctx, `
		INSERT INTO newsroom.publications (
			id, staging_item_id, slug, title, summary, body, category, tags,
			content_sin_vueltas, content_lo_central, content_en_profundidad,
			media, signed_by, published_by, published_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15, $15
		)`,
		pub.ID, pub.StagingItemID, pub.Slug, pub.Title, pub.Summary, pub.Body,
		pub.Category, rawOrNull(pub.Tags),
		levels.SinVueltas, levels.LoCentral, levels.EnProfundidad,
		rawOrNull(item.ImageURLs), pub.SignedBy, pub.PublishedBy, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert publication: %w", err)
	}

	// The publication_id IS NULL guard makes the flip idempotent even if a
	// concurrent publish slipped past the row lock.
	tag, err := tx.Exec(ctx, `
		UPDATE newsroom.staging_items
		SET state = $2,
		    state_updated_at = $3,
		    publication_id = $4,
		    published_at = $3,
		    published_by = $5,
		    updated_at = $3,
		    updated_by = $5
		WHERE id = $1 AND publication_id IS NULL`,
		item.ID, string(staging.StatePublished), now, pub.ID, req.PublishedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("mark staging item published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("staging item %s: %w", req.ItemID, staging.ErrAlreadyPublished)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit publish transaction: %w", err)
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("publication_id", pub.ID).
		Str("slug", pub.Slug).
		Str("published_by", pub.PublishedBy).
		Msg("staging item published")

	return pub, nil
}

type lockedItem struct {
	ID            string
	State         string
	Title         *string
	Summary       *string
	Content       string
	AITitle       *string
	AISummary     *string
	AITags        json.RawMessage
	AICategory    *string
	AIMetadata    json.RawMessage
	Tags          json.RawMessage
	ImageURLs     json.RawMessage
	PublicationID *string
}

func lockItem(ctx context.Context, tx db.Tx, id string) (*lockedItem, error) {
	var it lockedItem
	err := tx.QueryRow(ctx, `
		SELECT id, state, title, summary, content,
		       ai_title, ai_summary, ai_tags, ai_category, ai_metadata,
		       tags, image_urls, publication_id
		FROM newsroom.staging_items
		WHERE id = $1
		FOR UPDATE`, id).Scan(
		&it.ID, &it.State, &it.Title, &it.Summary, &it.Content,
		&it.AITitle, &it.AISummary, &it.AITags, &it.AICategory, &it.AIMetadata,
		&it.Tags, &it.ImageURLs, &it.PublicationID,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("staging item %s: %w", id, staging.ErrNotFound)
		}
		return nil, fmt.Errorf("lock staging item: %w", err)
	}
	return &it, nil
}

func buildPublication(item *lockedItem, req Request) *Publication {
	title := firstNonEmpty(req.TitleOverride, item.AITitle, item.Title)
	summary := firstNonEmpty(req.SummaryOverride, item.AISummary, item.Summary)

	slugSource := title
	if req.SlugOverride != nil && strings.TrimSpace(*req.SlugOverride) != "" {
		slugSource = *req.SlugOverride
	}

	tags := item.AITags
	if len(tags) == 0 {
		tags = item.Tags
	}

	return &Publication{
		ID:            uuid.NewString(),
		StagingItemID: item.ID,
		Slug:          slug.Make(slugSource),
		Title:         title,
		Summary:       summary,
		Body:          item.Content,
		Category:      item.AICategory,
		Tags:          tags,
		SignedBy:      req.SignedBy,
		PublishedBy:   req.PublishedBy,
	}
}

// resolveSlug keeps slugs unique: a taken slug gets the first eight
// characters of the owning item's id appended.
func resolveSlug(ctx context.Context, tx db.Tx, base, itemID string) (string, error) {
	if base == "" {
		base = slug.WithSuffix("nota", shortID(itemID))
	}

	var taken bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM newsroom.publications WHERE slug = $1)`,
		base).Scan(&taken)
	if err != nil {
		return "", fmt.Errorf("check slug availability: %w", err)
	}
	if !taken {
		return base, nil
	}
	return slug.WithSuffix(base, shortID(itemID)), nil
}

func shortID(id string) string {
	cleaned := strings.ReplaceAll(id, "-", "")
	if len(cleaned) > 8 {
		cleaned = cleaned[:8]
	}
	return cleaned
}

func extractReadingLevels(aiMetadata json.RawMessage) readingLevels {
	var levels readingLevels
	if len(aiMetadata) == 0 {
		return levels
	}
	var meta struct {
		ReadingLevels readingLevels `json:"reading_levels"`
	}
	if err := json.Unmarshal(aiMetadata, &meta); err != nil {
		return readingLevels{}
	}
	return meta.ReadingLevels
}

func firstNonEmpty(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			return strings.TrimSpace(*c)
		}
	}
	return ""
}

func rawOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
