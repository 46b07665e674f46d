package payloadschema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateScrapedArticlePayload_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source_media":"pagina12",
		"source_section":"economia",
		"url":"https://www.pagina12.com.ar/nota/inflacion-junio",
		"title":"Inflación de junio",
		"content":"El índice de precios al consumidor subió en junio según el organismo oficial.",
		"author":"Redacción",
		"article_date":"2026-06-15T10:00:00Z",
		"tags":["economia","inflacion"],
		"scraper_name":"pagina12-scraper",
		"scraper_version":"1.4.0",
		"scraping_duration_ms":812
	}`)

	article, err := ValidateScrapedArticlePayload(payload)
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}

	if article.SourceMedia != "pagina12" {
		t.Fatalf("expected source_media=pagina12, got %q", article.SourceMedia)
	}
	if article.PayloadVersion != "v1" {
		t.Fatalf("expected payload_version=v1, got %q", article.PayloadVersion)
	}
	if article.ScrapingDurationMS == nil || *article.ScrapingDurationMS != 812 {
		t.Fatalf("expected scraping_duration_ms=812, got %v", article.ScrapingDurationMS)
	}
}

func TestValidateScrapedArticlePayload_MissingRequired(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"url":"https://example.ar/nota",
		"content":"texto",
		"scraper_name":"s"
	}`)

	_, err := ValidateScrapedArticlePayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for missing source_media")
	}
}

func TestValidateScrapedArticlePayload_NeitherContentNorHTML(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source_media":"clarin",
		"url":"https://www.clarin.com/nota",
		"title":"Sin cuerpo",
		"scraper_name":"clarin-scraper"
	}`)

	_, err := ValidateScrapedArticlePayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail without content or raw_html")
	}
	if !strings.Contains(err.Error(), "content or raw_html") {
		t.Fatalf("expected content/raw_html semantic error, got: %v", err)
	}
}

func TestValidateScrapedArticlePayload_RawHTMLOnly(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source_media":"clarin",
		"url":"https://www.clarin.com/nota",
		"raw_html":"<html><body><p>cuerpo</p></body></html>",
		"scraper_name":"clarin-scraper"
	}`)

	if _, err := ValidateScrapedArticlePayload(payload); err != nil {
		t.Fatalf("raw_html only payload should be valid, got: %v", err)
	}
}

func TestValidateScrapedArticlePayload_BadArticleDate(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source_media":"lanacion",
		"url":"https://www.lanacion.com.ar/nota",
		"content":"texto",
		"article_date":"ayer a la tarde",
		"scraper_name":"lanacion-scraper"
	}`)

	_, err := ValidateScrapedArticlePayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for invalid article_date")
	}
}

func TestValidateScrapedArticlePayload_WrongVersion(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v2",
		"source_media":"clarin",
		"url":"https://www.clarin.com/nota",
		"content":"texto",
		"scraper_name":"clarin-scraper"
	}`)

	_, err := ValidateScrapedArticlePayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for unsupported payload_version")
	}
}

func TestValidateScrapedArticlePayload_TrailingContent(t *testing.T) {
	payload := json.RawMessage(`{"payload_version":"v1","source_media":"m","url":"https://a.ar/x","content":"c","scraper_name":"s"} {"extra":true}`)

	_, err := ValidateScrapedArticlePayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for trailing JSON content")
	}
}
