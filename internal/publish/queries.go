package publish

import (
	"context"
	"fmt"

	"ladatajusta.ar/newsroom/internal/db"
	"ladatajusta.ar/newsroom/internal/staging"
)

const publicationColumns = `
	id, staging_item_id, slug, title, summary, body, category, tags,
	content_sin_vueltas, content_lo_central, content_en_profundidad,
	media, signed_by, published_by, published_at, created_at`

func scanPublication(row *db.Row) (*db.Publication, error) {
	var p db.Publication
	err := row.Scan(
		&p.ID, &p.StagingItemID, &p.Slug, &p.Title, &p.Summary, &p.Body, &p.Category, &p.Tags,
		&p.ContentSinVueltas, &p.ContentLoCentral, &p.ContentEnProfundidad,
		&p.Media, &p.SignedBy, &p.PublishedBy, &p.PublishedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a publication by id.
func (s *Service) Get(ctx context.Context, id string) (*db.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM newsroom.publications WHERE id = $1`
	p, err := scanPublication(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("publication %s: %w", id, staging.ErrNotFound)
		}
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return p, nil
}

// GetBySlug returns a publication by its public slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*db.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM newsroom.publications WHERE slug = $1`
	p, err := scanPublication(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("publication slug %s: %w", slug, staging.ErrNotFound)
		}
		return nil, fmt.Errorf("get publication by slug: %w", err)
	}
	return p, nil
}

// List returns recent publications, newest first, optionally filtered by
// category.
func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]db.Publication, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+publicationColumns+`
		FROM newsroom.publications
		WHERE ($1 = '' OR category = $1)
		ORDER BY published_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		category, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	pubs := make([]db.Publication, 0, limit)
	for rows.Next() {
		var p db.Publication
		err := rows.Scan(
			&p.ID, &p.StagingItemID, &p.Slug, &p.Title, &p.Summary, &p.Body, &p.Category, &p.Tags,
			&p.ContentSinVueltas, &p.ContentLoCentral, &p.ContentEnProfundidad,
			&p.Media, &p.SignedBy, &p.PublishedBy, &p.PublishedAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return pubs, nil
}
