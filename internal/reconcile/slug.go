package reconcile

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// stripDiacritics decomposes and drops combining marks so accented source
// names slug cleanly.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// GenerateSlug builds the canonical "<brand>-<name>" slug. Deterministic:
// the same inputs always produce the same slug.
func GenerateSlug(brandSlug, name string) string {
	joined := brandSlug + " " + name
	if clean, _, err := transform.String(stripDiacritics, joined); err == nil {
		joined = clean
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(joined), "-")
	return strings.Trim(slug, "-")
}
