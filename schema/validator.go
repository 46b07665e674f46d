// Package payloadschema validates scraper payloads against the v1 scraped
// article contract before anything reaches the staging store.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed scraped_article.schema.json
var scrapedArticleSchemaJSON string

// ScrapedArticle is one validated producer payload.
type ScrapedArticle struct {
	PayloadVersion string   `json:"payload_version"`
	SourceMedia    string   `json:"source_media"`
	SourceSection  *string  `json:"source_section,omitempty"`
	URL            string   `json:"url"`
	CanonicalURL   *string  `json:"canonical_url,omitempty"`
	Title          *string  `json:"title,omitempty"`
	Subtitle       *string  `json:"subtitle,omitempty"`
	Summary        *string  `json:"summary,omitempty"`
	Content        *string  `json:"content,omitempty"`
	RawHTML        *string  `json:"raw_html,omitempty"`
	Author         *string  `json:"author,omitempty"`
	ArticleDate    *string  `json:"article_date,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ImageURLs      []string `json:"image_urls,omitempty"`
	VideoURLs      []string `json:"video_urls,omitempty"`
	Language       *string  `json:"language,omitempty"`

	ScraperName        string         `json:"scraper_name"`
	ScraperVersion     *string        `json:"scraper_version,omitempty"`
	ScrapingDurationMS *int           `json:"scraping_duration_ms,omitempty"`
	ExtraMetadata      map[string]any `json:"extra_metadata,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateScrapedArticlePayload checks a raw payload against the JSON schema
// plus the semantic rules the schema cannot express, and returns the decoded
// article.
func ValidateScrapedArticlePayload(payload json.RawMessage) (*ScrapedArticle, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var article ScrapedArticle
	if err := json.Unmarshal(normalized, &article); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&article); err != nil {
		return nil, err
	}

	return &article, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("scraped_article.schema.json", strings.NewReader(scrapedArticleSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("scraped_article.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(article *ScrapedArticle) error {
	if article == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(article.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}
	if strings.TrimSpace(article.SourceMedia) == "" {
		return fmt.Errorf("source_media must not be empty")
	}
	if strings.TrimSpace(article.ScraperName) == "" {
		return fmt.Errorf("scraper_name must not be empty")
	}
	if err := validateURI("url", article.URL); err != nil {
		return err
	}
	if article.CanonicalURL != nil {
		if err := validateURI("canonical_url", *article.CanonicalURL); err != nil {
			return err
		}
	}

	hasContent := article.Content != nil && strings.TrimSpace(*article.Content) != ""
	hasRawHTML := article.RawHTML != nil && strings.TrimSpace(*article.RawHTML) != ""
	if !hasContent && !hasRawHTML {
		return fmt.Errorf("payload must carry content or raw_html")
	}

	if article.ArticleDate != nil {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*article.ArticleDate)); err != nil {
			return fmt.Errorf("article_date must be RFC3339: %w", err)
		}
	}

	for i, tag := range article.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags[%d] must not be empty", i)
		}
	}
	for i, u := range article.ImageURLs {
		if err := validateURI(fmt.Sprintf("image_urls[%d]", i), u); err != nil {
			return err
		}
	}
	for i, u := range article.VideoURLs {
		if err := validateURI(fmt.Sprintf("video_urls[%d]", i), u); err != nil {
			return err
		}
	}

	return nil
}

func validateURI(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	return nil
}
