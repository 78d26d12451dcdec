package match

import (
	"math"
	"testing"

	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

func testMatchConfig() shared.MatchConfig {
	return shared.MatchConfig{
		TitleWeight:       0.7,
		ArtistWeight:      0.3,
		MinScore:          0.5,
		DurationPenalty:   0.15,
		MaxDurationDelta:  30,
		SearchesPerSecond: 1,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTextSimilarity(t *testing.T) {
	t.Run("identical after normalization", func(t *testing.T) {
		if got := textSimilarity("Song Title (Remix)", "song title"); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("empty input scores zero", func(t *testing.T) {
		if got := textSimilarity("", "anything"); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("containment scores above disjoint", func(t *testing.T) {
		contained := textSimilarity("song title", "song title official audio")
		disjoint := textSimilarity("song title", "completely unrelated thing")
		if contained <= disjoint {
			t.Errorf("containment %v should exceed disjoint %v", contained, disjoint)
		}
	})

	t.Run("never exceeds one", func(t *testing.T) {
		if got := textSimilarity("abc", "abc abc"); got > 1 {
			t.Errorf("similarity %v exceeds 1", got)
		}
	})
}

func TestArtistSimilarity(t *testing.T) {
	t.Run("empty credit scores one", func(t *testing.T) {
		if got := artistSimilarity("", "anyone"); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("best of combined credit", func(t *testing.T) {
		if got := artistSimilarity("A, Some Uploader & C", "Some Uploader"); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})
}

func TestScore(t *testing.T) {
	engine := NewEngine(testMatchConfig(), nil)

	t.Run("exact match scores one", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Song Title", Uploader: "The Artist"}
		if got := engine.Score("Song Title", "The Artist", 0, c); !almostEqual(got, 1) {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("unknown duration incurs no penalty", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Song Title", Uploader: "The Artist", DurationSec: 200}
		if got := engine.Score("Song Title", "The Artist", 0, c); !almostEqual(got, 1) {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("full duration penalty at max delta", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Song Title", Uploader: "The Artist", DurationSec: 230}
		if got := engine.Score("Song Title", "The Artist", 200, c); !almostEqual(got, 0.85) {
			t.Errorf("expected 0.85, got %v", got)
		}
	})

	t.Run("duration penalty is capped", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Song Title", Uploader: "The Artist", DurationSec: 500}
		if got := engine.Score("Song Title", "The Artist", 200, c); !almostEqual(got, 0.85) {
			t.Errorf("expected 0.85, got %v", got)
		}
	})

	t.Run("partial duration penalty scales", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Song Title", Uploader: "The Artist", DurationSec: 215}
		if got := engine.Score("Song Title", "The Artist", 200, c); !almostEqual(got, 0.925) {
			t.Errorf("expected 0.925, got %v", got)
		}
	})

	t.Run("disjoint text scores below the floor", func(t *testing.T) {
		c := models.MatchCandidate{Title: "zzzz", Uploader: "qqqq"}
		if got := engine.Score("aaaa", "bbbb", 0, c); got >= 0.5 {
			t.Errorf("expected score below 0.5, got %v", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		c := models.MatchCandidate{Title: "Some Song (Official Video)", Uploader: "An Artist", DurationSec: 187}
		first := engine.Score("Some Song", "An Artist, Friend", 190, c)
		for i := 0; i < 10; i++ {
			if got := engine.Score("Some Song", "An Artist, Friend", 190, c); got != first {
				t.Fatalf("score changed between calls: %v vs %v", first, got)
			}
		}
	})

	t.Run("never negative", func(t *testing.T) {
		cfg := testMatchConfig()
		cfg.DurationPenalty = 2
		e := NewEngine(cfg, nil)
		c := models.MatchCandidate{Title: "zz", Uploader: "zz", DurationSec: 500}
		if got := e.Score("aa", "bb", 100, c); got < 0 {
			t.Errorf("score %v is negative", got)
		}
	})
}
