package publish

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestBuildPublicationFallbacks(t *testing.T) {
	t.Parallel()

	item := &lockedItem{
		ID:        "9f2c1b7a-0000-0000-0000-000000000000",
		Title:     strPtr("Titulo original"),
		Summary:   strPtr("Resumen original"),
		Content:   "Cuerpo de la nota.",
		AITitle:   strPtr("Titulo AI"),
		AISummary: strPtr("Resumen AI"),
	}

	t.Run("override wins", func(t *testing.T) {
		t.Parallel()
		pub := buildPublication(item, Request{
			PublishedBy:   "ops",
			TitleOverride: strPtr("Titulo editorial"),
		})
		if pub.Title != "Titulo editorial" {
			t.Fatalf("Title = %q", pub.Title)
		}
		if pub.Summary != "Resumen AI" {
			t.Fatalf("Summary = %q, AI summary should win without override", pub.Summary)
		}
	})

	t.Run("ai beats original", func(t *testing.T) {
		t.Parallel()
		pub := buildPublication(item, Request{PublishedBy: "ops"})
		if pub.Title != "Titulo AI" {
			t.Fatalf("Title = %q", pub.Title)
		}
		if pub.Slug != "titulo-ai" {
			t.Fatalf("Slug = %q", pub.Slug)
		}
		if pub.Body != "Cuerpo de la nota." {
			t.Fatalf("Body = %q", pub.Body)
		}
	})

	t.Run("original is last resort", func(t *testing.T) {
		t.Parallel()
		bare := &lockedItem{ID: item.ID, Title: strPtr("Solo titulo"), Content: "c"}
		pub := buildPublication(bare, Request{PublishedBy: "ops"})
		if pub.Title != "Solo titulo" {
			t.Fatalf("Title = %q", pub.Title)
		}
		if pub.Summary != "" {
			t.Fatalf("Summary = %q, want empty", pub.Summary)
		}
	})

	t.Run("ai tags beat scraped tags", func(t *testing.T) {
		t.Parallel()
		tagged := &lockedItem{
			ID:      item.ID,
			Title:   strPtr("t"),
			Content: "c",
			Tags:    json.RawMessage(`["scraped"]`),
			AITags:  json.RawMessage(`["ai"]`),
		}
		pub := buildPublication(tagged, Request{PublishedBy: "ops"})
		if string(pub.Tags) != `["ai"]` {
			t.Fatalf("Tags = %s", pub.Tags)
		}

		tagged.AITags = nil
		pub = buildPublication(tagged, Request{PublishedBy: "ops"})
		if string(pub.Tags) != `["scraped"]` {
			t.Fatalf("Tags = %s, scraped tags should be the fallback", pub.Tags)
		}
	})
}

func TestShortID(t *testing.T) {
	t.Parallel()

	got := shortID("9f2c1b7a-4de5-4f6a-8b9c-0d1e2f3a4b5c")
	if got != "9f2c1b7a" {
		t.Fatalf("shortID = %q", got)
	}
	if len(got) != 8 || strings.Contains(got, "-") {
		t.Fatalf("shortID should be 8 hex chars, got %q", got)
	}
	if shortID("abc") != "abc" {
		t.Fatalf("short input should pass through")
	}
}

func TestExtractReadingLevels(t *testing.T) {
	t.Parallel()

	meta := json.RawMessage(`{
		"model_notes": "x",
		"reading_levels": {
			"sin_vueltas": "Version corta.",
			"lo_central": "Version media.",
			"en_profundidad": "Version larga."
		}
	}`)

	levels := extractReadingLevels(meta)
	if levels.SinVueltas == nil || *levels.SinVueltas != "Version corta." {
		t.Fatalf("SinVueltas = %v", levels.SinVueltas)
	}
	if levels.LoCentral == nil || *levels.LoCentral != "Version media." {
		t.Fatalf("LoCentral = %v", levels.LoCentral)
	}
	if levels.EnProfundidad == nil || *levels.EnProfundidad != "Version larga." {
		t.Fatalf("EnProfundidad = %v", levels.EnProfundidad)
	}

	if got := extractReadingLevels(nil); got.SinVueltas != nil {
		t.Fatal("nil metadata should yield empty levels")
	}
	if got := extractReadingLevels(json.RawMessage(`not json`)); got.SinVueltas != nil {
		t.Fatal("invalid metadata should yield empty levels")
	}
	if got := extractReadingLevels(json.RawMessage(`{"other":true}`)); got.LoCentral != nil {
		t.Fatal("metadata without reading_levels should yield empty levels")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	if got := firstNonEmpty(nil, strPtr("  "), strPtr(" valor ")); got != "valor" {
		t.Fatalf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty(nil, nil); got != "" {
		t.Fatalf("all-nil should yield empty, got %q", got)
	}
}
