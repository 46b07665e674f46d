package hashing

import (
	"strings"
	"testing"
)

func TestNormalizeURL_StripsTrackingAndNormalizes(t *testing.T) {
	t.Parallel()

	got := NormalizeURL("https://Example.COM:443/politica/nota/?utm_source=tw&fbclid=abc&b=2&a=1")
	if got != "https://example.com/politica/nota?a=1&b=2" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/a/b/",
		"HTTP://EXAMPLE.com:80/path?z=1&a=2#frag",
		"https://www.lagaceta.com.ar/nota/123/titulo/?ref=home",
		"https://example.com/nota/t%C3%ADtulo-con-acento",
		"https://example.com///seccion////nota",
	}
	for _, input := range inputs {
		once := NormalizeURL(input)
		twice := NormalizeURL(once)
		if once != twice {
			t.Fatalf("normalization not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeURL_EncodedPathKeptStable(t *testing.T) {
	t.Parallel()

	raw := "https://example.com/nota/t%C3%ADtulo-con-acento"
	got := NormalizeURL(raw)
	if got != raw {
		t.Fatalf("unexpected normalized url: %q", got)
	}
	if URLHash(got) != URLHash(raw) {
		t.Fatalf("hash of the normalized url must match hash of the original")
	}
}

func TestNormalizeURL_CollapsesSlashRuns(t *testing.T) {
	t.Parallel()

	if got := NormalizeURL("https://example.com///a"); got != "https://example.com/a" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
	if got := NormalizeURL("https://example.com////seccion///nota//"); got != "https://example.com/seccion/nota" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	t.Parallel()

	if got := NormalizeURL("not a url"); got != "" {
		t.Fatalf("expected empty result for invalid URL, got %q", got)
	}
	if got := NormalizeURL("/relative/path"); got != "" {
		t.Fatalf("expected empty result for relative URL, got %q", got)
	}
}

func TestNormalizeContent_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := NormalizeContent("  Hola \t\n  Mundo\n\nfinal ")
	if got != "hola mundo final" {
		t.Fatalf("unexpected normalized content: %q", got)
	}
}

func TestContentHash_StableAcrossReformatting(t *testing.T) {
	t.Parallel()

	a := ContentHash("Hello   world")
	b := ContentHash("hello world\n")
	if a != b {
		t.Fatalf("expected identical hashes, got %q and %q", a, b)
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Fatalf("expected 64-char lowercase hex digest, got %q", a)
	}
}

func TestURLHash_DiffersForDifferentLinks(t *testing.T) {
	t.Parallel()

	a := URLHash("https://example.com/nota/1")
	b := URLHash("https://example.com/nota/2")
	if a == b {
		t.Fatalf("expected different hashes for different URLs")
	}

	c := URLHash("https://example.com/nota/1/?utm_campaign=x")
	if a != c {
		t.Fatalf("expected tracking params to not affect url hash")
	}
}
