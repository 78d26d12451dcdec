// package match implements cross-platform track matching against SoundCloud
package match

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
	"golang.org/x/time/rate"
)

const soundcloudSearchURL = "https://soundcloud.com/search/sounds?q="

// SoundCloud's search results page, selector fallbacks mirroring markup
// variants observed in the wild.
var soundcloudResultSelectors = []string{
	`ul.sc-list-nostyle`,
	`div[role="main"] ul`,
	`div.searchList__results`,
}

const soundcloudExtractScript = `
(() => {
	const tracks = [];
	const selectors = [
		'ul.sc-list-nostyle li',
		'div[role="main"] ul li',
		'div.searchList__results div.sound__content'
	];

	for (const selector of selectors) {
		const items = document.querySelectorAll(selector);
		if (items.length === 0) continue;

		for (const item of items) {
			const titleEl = item.querySelector(
				'a[href*="/track/"], a.sc-link-primary, a.soundTitle__title, a[href*="soundcloud.com"][title]');
			const userEl = item.querySelector(
				'a.sc-link-secondary[href*="/"], a.soundTitle__username, a[href*="soundcloud.com/"][class*="user"]');
			if (!titleEl || !userEl) continue;

			const track = {
				title: titleEl.textContent.trim(),
				url: titleEl.href,
				uploader: userEl.textContent.trim(),
				duration_sec: 0
			};

			const durEl = item.querySelector('span[aria-label*="Duration"], span.duration');
			if (durEl) {
				const parts = durEl.textContent.trim().split(':').map(Number);
				if (parts.length === 2 && !parts.some(isNaN)) {
					track.duration_sec = parts[0] * 60 + parts[1];
				}
			}

			tracks.push(track);
		}

		if (tracks.length > 0) break;
	}

	return tracks;
})()
`

// rawCandidate is the shape produced by the in-page extraction script.
type rawCandidate struct {
	Title       string `json:"title"`
	Uploader    string `json:"uploader"`
	URL         string `json:"url"`
	DurationSec int    `json:"duration_sec"`
}

// Engine searches the target platform and scores candidates.
//
// An Engine is safe for concurrent use; all per-search state lives on the
// session passed into [Engine.Search].
type Engine struct {
	cfg     shared.MatchConfig
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewEngine creates a match engine with the given scoring configuration.
// Searches are paced at cfg.SearchesPerSecond to stay polite toward the
// target platform.
func NewEngine(cfg shared.MatchConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	rps := cfg.SearchesPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Engine{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Search queries the target platform for a track and returns candidates
// ordered best first. Candidates whose URL appears in excludeURLs are
// discarded before ranking.
//
// Throttling observed during the search fails it with
// [shared.ErrRateLimited] after setting the session's rate-limit signal.
func (e *Engine) Search(ctx context.Context, sess *browser.Session, trackName, artistName string, excludeURLs []string) ([]models.MatchCandidate, error) {
	if strings.TrimSpace(trackName) == "" {
		return nil, fmt.Errorf("%w: track name is required", shared.ErrInvalidInput)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	query := strings.TrimSpace(trackName)
	if artistName != "" {
		query += " " + strings.TrimSpace(artistName)
	}

	searchURL := soundcloudSearchURL + url.QueryEscape(query)
	e.logger.Debug("searching target platform", "query", query, "session_id", sess.ID())

	if err := sess.Navigate(ctx, searchURL); err != nil {
		if sess.CheckThrottled(ctx) {
			return nil, fmt.Errorf("%w: during search navigation", shared.ErrRateLimited)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchTimeout, err)
	}

	if err := e.waitForResults(ctx, sess); err != nil {
		return nil, err
	}

	var raws []rawCandidate
	if err := sess.Evaluate(ctx, soundcloudExtractScript, &raws); err != nil {
		return nil, fmt.Errorf("%w: extracting search results: %v", shared.ErrSearchTimeout, err)
	}

	excluded := make(map[string]bool, len(excludeURLs))
	for _, u := range excludeURLs {
		excluded[u] = true
	}

	var candidates []models.MatchCandidate
	for _, r := range raws {
		if r.Title == "" || r.URL == "" || excluded[r.URL] {
			continue
		}
		candidates = append(candidates, models.MatchCandidate{
			Title:       r.Title,
			Uploader:    r.Uploader,
			URL:         r.URL,
			DurationSec: r.DurationSec,
		})
	}

	e.rank(candidates, trackName, artistName)
	return candidates, nil
}

// waitForResults waits for any known results container, treating a throttle
// page as rate limiting and anything else as an unresponsive search.
func (e *Engine) waitForResults(ctx context.Context, sess *browser.Session) error {
	var lastErr error
	for _, sel := range soundcloudResultSelectors {
		if err := sess.WaitReady(ctx, sel); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}

	if sess.CheckThrottled(ctx) {
		return fmt.Errorf("%w: while waiting for search results", shared.ErrRateLimited)
	}
	return fmt.Errorf("%w: %v", shared.ErrSearchTimeout, lastErr)
}

// rank orders candidates best first by title/artist score. The sort is
// stable so equal scores keep the platform's relevance order.
func (e *Engine) rank(candidates []models.MatchCandidate, trackName, artistName string) {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		// Duration is not considered at ranking time; the penalty applies
		// in PickBest where the source duration is known.
		scores[i] = e.cfg.TitleWeight*textSimilarity(trackName, c.Title) +
			e.cfg.ArtistWeight*artistSimilarity(artistName, c.Uploader)
	}

	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranked := make([]models.MatchCandidate, len(candidates))
	for i, j := range idx {
		ranked[i] = candidates[j]
	}
	copy(candidates, ranked)
}

// PickBest selects the highest-scoring candidate at or above the confidence
// floor, or reports that no candidate is good enough. Ties break toward the
// earlier candidate in the list.
func (e *Engine) PickBest(candidates []models.MatchCandidate, trackName, artistName string, durationSec int) (*models.MatchCandidate, bool) {
	bestIdx := -1
	bestScore := 0.0

	for i, c := range candidates {
		score := e.Score(trackName, artistName, durationSec, c)
		if score < e.cfg.MinScore {
			continue
		}
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 {
		return nil, false
	}

	best := candidates[bestIdx]
	e.logger.Debug("selected match", "title", best.Title, "uploader", best.Uploader, "score", fmt.Sprintf("%.2f", bestScore))
	return &best, true
}
