package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug: diacritics are stripped, runs of
// anything other than [a-z0-9] become one hyphen, and edge hyphens are trimmed.
//
// Examples:
//   - "Galaxy S24 Ultra" → "galaxy-s24-ultra"
//   - "iPhone 15 Pro (256GB)" → "iphone-15-pro-256gb"
//   - "Café Noir" → "cafe-noir"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer("ı", "i", "ß", "ss", "ø", "o", "ł", "l").Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// Equal reports whether a and b produce the same slug.
func Equal(a, b string) bool {
	return Generate(a) == Generate(b)
}
