package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/playlift/playlift/internal/models"
)

// Component weights inside a single text similarity: token-set overlap
// catches reordered or partially-quoted titles, sequence similarity catches
// small spelling differences.
const (
	tokenSetWeight = 0.6
	sequenceWeight = 0.4
	containBoost   = 0.1
)

// textSimilarity scores two text fragments in [0, 1] after normalization.
func textSimilarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	score := tokenSetWeight*tokenSetSimilarity(na, nb) + sequenceWeight*sequenceSimilarity(na, nb)

	// One string containing the other is a strong partial-match signal,
	// e.g. "song title" vs "song title official audio".
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		score += containBoost
	}

	if score > 1 {
		return 1
	}
	return score
}

// tokenSetSimilarity is the Jaccard index over the word tokens of two text
// fragments.
func tokenSetSimilarity(na, nb string) float64 {
	ta, tb := tokenize(na), tokenize(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}

	union := len(set)
	intersection := 0
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}

// sequenceSimilarity is a normalized edit-distance similarity over
// already-normalized text.
func sequenceSimilarity(na, nb string) float64 {
	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}

// artistSimilarity scores a candidate uploader against a possibly combined
// artist credit, keeping the best per-artist score. An empty artist credit
// scores 1 so that title-only queries are not penalized.
func artistSimilarity(artistName, uploader string) float64 {
	if strings.TrimSpace(artistName) == "" {
		return 1
	}

	best := 0.0
	for _, artist := range SplitArtists(artistName) {
		if s := textSimilarity(artist, uploader); s > best {
			best = s
		}
	}
	return best
}

// Score computes the combined match score of a candidate for the given
// source track in [0, 1]. Deterministic: the same inputs always produce the
// same score.
//
// The combined title/artist score is reduced by a penalty proportional to
// the duration mismatch, capped at the configured maximum. Unknown durations
// (zero on either side) incur no penalty.
func (e *Engine) Score(trackName, artistName string, durationSec int, c models.MatchCandidate) float64 {
	title := textSimilarity(trackName, c.Title)
	artist := artistSimilarity(artistName, c.Uploader)

	score := e.cfg.TitleWeight*title + e.cfg.ArtistWeight*artist

	if durationSec > 0 && c.DurationSec > 0 && e.cfg.MaxDurationDelta > 0 {
		delta := durationSec - c.DurationSec
		if delta < 0 {
			delta = -delta
		}
		frac := float64(delta) / float64(e.cfg.MaxDurationDelta)
		if frac > 1 {
			frac = 1
		}
		score -= e.cfg.DurationPenalty * frac
	}

	if score < 0 {
		return 0
	}
	return score
}
