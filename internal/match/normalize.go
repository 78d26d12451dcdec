package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketedRe  = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	featTailRe   = regexp.MustCompile(`(?i)\b(?:feat\.?|ft\.?|featuring)\b.*$`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	artistSepRe  = regexp.MustCompile(`[,&]| x |\+`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Strips combining marks left over after NFD decomposition.
	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize canonicalizes track or artist text for comparison: lowercase,
// diacritics stripped, bracketed qualifiers (remixes, live tags, featured
// artists) removed, punctuation dropped, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)

	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	s = bracketedRe.ReplaceAllString(s, " ")
	s = featTailRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// tokenize splits normalized text into its word tokens.
func tokenize(s string) []string {
	s = Normalize(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// SplitArtists breaks a combined artist credit ("A, B & C") into individual
// names. Matching scores each variant and keeps the best, so a candidate
// uploaded under any one of the credited artists still matches.
func SplitArtists(s string) []string {
	parts := artistSepRe.Split(s, -1)
	var artists []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	if len(artists) == 0 && strings.TrimSpace(s) != "" {
		artists = []string{strings.TrimSpace(s)}
	}
	return artists
}
