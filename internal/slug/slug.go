// Package slug builds URL-safe identifiers for publications from article
// titles, folding Spanish accented characters to plain ASCII.
package slug

import (
	"strings"
	"unicode"
)

const maxLength = 80

var asciiFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
}

// Make converts free text into a lowercase hyphenated slug. Runs of
// non-alphanumeric runes collapse into single hyphens and the result is
// truncated at a word boundary. Empty input yields an empty slug; callers
// must supply their own fallback.
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastHyphen := true
	for _, r := range strings.ToLower(text) {
		if folded, ok := asciiFold[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) <= maxLength {
		return s
	}

	cut := s[:maxLength]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

// WithSuffix appends a short disambiguation token, typically the first eight
// characters of the owning item's id, keeping the whole slug within bounds.
func WithSuffix(base, suffix string) string {
	suffix = strings.TrimFunc(strings.ToLower(suffix), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if suffix == "" {
		return base
	}
	if base == "" {
		return suffix
	}

	budget := maxLength - len(suffix) - 1
	if len(base) > budget {
		base = strings.TrimRight(base[:budget], "-")
	}
	return base + "-" + suffix
}
