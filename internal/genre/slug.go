// Package genre provides genre text normalization and the default music taxonomy.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Normalize prepares a value for storage and comparison: NFC composition and
// surrounding whitespace trimmed. Whitespace inside the value is kept as given.
// "  Drum and Bass " -> "Drum and Bass".
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Slugify converts a string to a URL-safe slug.
// "Drum and Bass" -> "drum-and-bass".
// "Shoegaze" -> "shoegaze".
// "Hip-Hop/Rap" -> "hip-hop-rap".
// "Música Popular Brasileira" -> "musica-popular-brasileira".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
