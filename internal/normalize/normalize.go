// Package normalize reduces track, album and artist names to forms stable
// enough for cross-catalog comparison.
//
// Catalogs disagree on presentation far more than on substance: one side
// lists "Song - Live (2020 Remaster)", the other just "Song"; one writes
// "Café" where the other has "Cafe". Simplify strips the qualifier noise,
// Fold strips the diacritics. Both are pure, total and idempotent.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	qualifierRe  = regexp.MustCompile(`\s*(\([^)]*\)|\[[^\]]*\])`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Simplify strips trailing parenthetical and bracketed qualifiers plus any
// " - "-delimited suffix from a name, leaving the part used for search
// queries and coarse comparison.
//
//	Simplify("Song - Live (2020 Remaster) [Bonus]") == "Song"
func Simplify(name string) string {
	if idx := strings.Index(name, " - "); idx >= 0 {
		name = name[:idx]
	}
	name = qualifierRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Fold maps accented characters to their closest unaccented ASCII
// equivalent: "Café" → "Cafe", "Björk" → "Bjork". Input that cannot be
// decomposed is returned unchanged; Fold never fails.
func Fold(name string) string {
	folded, _, err := transform.String(folder, name)
	if err != nil {
		return name
	}
	return folded
}

// Key produces the canonical comparison form of a name: simplified, folded
// and lowercased. Two names are equivalent when their keys are equal.
func Key(name string) string {
	return strings.ToLower(Fold(Simplify(name)))
}

// Equivalent reports whether two names agree under Key.
func Equivalent(a, b string) bool {
	return Key(a) == Key(b)
}
