package db

import (
	"encoding/json"
	"time"
)

// StagingItem maps newsroom.staging_items: one scraped article and its full
// pipeline lifecycle up to (and including) publication.
type StagingItem struct {
	ID string `gorm:"column:id;type:uuid;primaryKey" json:"id"`

	SourceMedia         string  `gorm:"column:source_media;type:text;not null;index" json:"source_media"`
	SourceSection       *string `gorm:"column:source_section;type:text" json:"source_section,omitempty"`
	SourceURL           string  `gorm:"column:source_url;type:text;not null" json:"source_url"`
	SourceURLNormalized string  `gorm:"column:source_url_normalized;type:text;not null" json:"source_url_normalized"`
	CanonicalURL        *string `gorm:"column:canonical_url;type:text" json:"canonical_url,omitempty"`

	Title       *string         `gorm:"column:title;type:text" json:"title,omitempty"`
	Subtitle    *string         `gorm:"column:subtitle;type:text" json:"subtitle,omitempty"`
	Summary     *string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Content     string          `gorm:"column:content;type:text;not null" json:"content"`
	RawHTML     *string         `gorm:"column:raw_html;type:text" json:"raw_html,omitempty"`
	Author      *string         `gorm:"column:author;type:text" json:"author,omitempty"`
	ArticleDate *time.Time      `gorm:"column:article_date;type:timestamptz" json:"article_date,omitempty"`
	Tags        json.RawMessage `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`
	ImageURLs   json.RawMessage `gorm:"column:image_urls;type:jsonb" json:"image_urls,omitempty"`
	VideoURLs   json.RawMessage `gorm:"column:video_urls;type:jsonb" json:"video_urls,omitempty"`
	Language    *string         `gorm:"column:language;type:text" json:"language,omitempty"`

	ContentHash string `gorm:"column:content_hash;type:char(64);not null;index" json:"content_hash"`
	URLHash     string `gorm:"column:url_hash;type:char(64);not null;unique" json:"url_hash"`

	State          string    `gorm:"column:state;type:text;not null;default:scraped;index" json:"state"`
	StateUpdatedAt time.Time `gorm:"column:state_updated_at;type:timestamptz;not null;default:now()" json:"state_updated_at"`
	StateMessage   *string   `gorm:"column:state_message;type:text" json:"state_message,omitempty"`

	AITitle                *string         `gorm:"column:ai_title;type:text" json:"ai_title,omitempty"`
	AISummary              *string         `gorm:"column:ai_summary;type:text" json:"ai_summary,omitempty"`
	AITags                 json.RawMessage `gorm:"column:ai_tags;type:jsonb" json:"ai_tags,omitempty"`
	AICategory             *string         `gorm:"column:ai_category;type:text" json:"ai_category,omitempty"`
	AIModel                *string         `gorm:"column:ai_model;type:text" json:"ai_model,omitempty"`
	AIPromptVersion        *string         `gorm:"column:ai_prompt_version;type:text" json:"ai_prompt_version,omitempty"`
	AITokensUsed           *int            `gorm:"column:ai_tokens_used;type:integer" json:"ai_tokens_used,omitempty"`
	AICostUSD              *float64        `gorm:"column:ai_cost_usd;type:numeric(10,6)" json:"ai_cost_usd,omitempty"`
	AIProcessedAt          *time.Time      `gorm:"column:ai_processed_at;type:timestamptz" json:"ai_processed_at,omitempty"`
	AIProcessingDurationMS *int            `gorm:"column:ai_processing_duration_ms;type:integer" json:"ai_processing_duration_ms,omitempty"`
	AIMetadata             json.RawMessage `gorm:"column:ai_metadata;type:jsonb" json:"ai_metadata,omitempty"`

	RetryCount  int        `gorm:"column:retry_count;type:integer;not null;default:0" json:"retry_count"`
	MaxRetries  int        `gorm:"column:max_retries;type:integer;not null;default:3" json:"max_retries"`
	LastError   *string    `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	LastErrorAt *time.Time `gorm:"column:last_error_at;type:timestamptz" json:"last_error_at,omitempty"`
	ErrorTrace  *string    `gorm:"column:error_trace;type:text" json:"error_trace,omitempty"`

	PublicationID *string    `gorm:"column:publication_id;type:uuid" json:"publication_id,omitempty"`
	PublishedAt   *time.Time `gorm:"column:published_at;type:timestamptz" json:"published_at,omitempty"`
	PublishedBy   *string    `gorm:"column:published_by;type:text" json:"published_by,omitempty"`

	ScraperName        string  `gorm:"column:scraper_name;type:text;not null" json:"scraper_name"`
	ScraperVersion     *string `gorm:"column:scraper_version;type:text" json:"scraper_version,omitempty"`
	ScrapingRunID      *string `gorm:"column:scraping_run_id;type:uuid" json:"scraping_run_id,omitempty"`
	ScrapingDurationMS *int    `gorm:"column:scraping_duration_ms;type:integer" json:"scraping_duration_ms,omitempty"`

	ExtraMetadata json.RawMessage `gorm:"column:extra_metadata;type:jsonb" json:"extra_metadata,omitempty"`

	ScrapedAt time.Time `gorm:"column:scraped_at;type:timestamptz;not null;default:now();index" json:"scraped_at"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"updated_at"`
	CreatedBy *string   `gorm:"column:created_by;type:text" json:"created_by,omitempty"`
	UpdatedBy *string   `gorm:"column:updated_by;type:text" json:"updated_by,omitempty"`
}

func (StagingItem) TableName() string { return "newsroom.staging_items" }

// Publication maps newsroom.publications: the immutable published record a
// staging item converts into exactly once.
type Publication struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StagingItemID string `gorm:"column:staging_item_id;type:uuid;not null;unique" json:"staging_item_id"`

	Slug     string          `gorm:"column:slug;type:text;not null;unique" json:"slug"`
	Title    string          `gorm:"column:title;type:text;not null" json:"title"`
	Summary  string          `gorm:"column:summary;type:text;not null;default:''" json:"summary"`
	Body     string          `gorm:"column:body;type:text;not null" json:"body"`
	Category *string         `gorm:"column:category;type:text" json:"category,omitempty"`
	Tags     json.RawMessage `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`

	// Reading-depth variants lifted from ai_metadata at publish time.
	ContentSinVueltas    *string `gorm:"column:content_sin_vueltas;type:text" json:"content_sin_vueltas,omitempty"`
	ContentLoCentral     *string `gorm:"column:content_lo_central;type:text" json:"content_lo_central,omitempty"`
	ContentEnProfundidad *string `gorm:"column:content_en_profundidad;type:text" json:"content_en_profundidad,omitempty"`

	Media json.RawMessage `gorm:"column:media;type:jsonb" json:"media,omitempty"`

	// SignedBy is the public editorial persona; PublishedBy the operator
	// account that triggered the publish. They are distinct audit columns.
	SignedBy    *string `gorm:"column:signed_by;type:text" json:"signed_by,omitempty"`
	PublishedBy string  `gorm:"column:published_by;type:text;not null" json:"published_by"`

	PublishedAt time.Time `gorm:"column:published_at;type:timestamptz;not null;default:now()" json:"published_at"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"created_at"`
}

func (Publication) TableName() string { return "newsroom.publications" }

// ScrapingRun maps newsroom.scraping_runs: one producer batch and its
// counters.
type ScrapingRun struct {
	ID          string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SourceMedia string     `gorm:"column:source_media;type:text;not null" json:"source_media"`
	ScraperName string     `gorm:"column:scraper_name;type:text;not null" json:"scraper_name"`
	StartedAt   time.Time  `gorm:"column:started_at;type:timestamptz;not null;default:now()" json:"started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at;type:timestamptz" json:"finished_at,omitempty"`
	Status      string     `gorm:"column:status;type:text;not null;default:running" json:"status"`

	ItemsFound   int `gorm:"column:items_found;type:integer;not null;default:0" json:"items_found"`
	ItemsNew     int `gorm:"column:items_new;type:integer;not null;default:0" json:"items_new"`
	ItemsUpdated int `gorm:"column:items_updated;type:integer;not null;default:0" json:"items_updated"`
	ErrorCount   int `gorm:"column:error_count;type:integer;not null;default:0" json:"error_count"`

	ErrorMessage *string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"updated_at"`
}

func (ScrapingRun) TableName() string { return "newsroom.scraping_runs" }

func autoMigrateModels() []any {
	return []any{
		&StagingItem{},
		&Publication{},
		&ScrapingRun{},
	}
}
