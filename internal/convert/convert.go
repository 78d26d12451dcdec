// package convert implements the batch conversion orchestrator
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/extract"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// SessionManager provides scoped access to exclusive browser sessions.
type SessionManager interface {
	WithSession(ctx context.Context, fn func(*browser.Session) error) error
}

// ExtractorRegistry selects a platform extractor by playlist URL.
type ExtractorRegistry interface {
	Lookup(url string) (extract.Extractor, error)
}

// Matcher searches the target platform and selects the best candidate.
type Matcher interface {
	Search(ctx context.Context, sess *browser.Session, trackName, artistName string, excludeURLs []string) ([]models.MatchCandidate, error)
	PickBest(candidates []models.MatchCandidate, trackName, artistName string, durationSec int) (*models.MatchCandidate, bool)
}

// PlaylistCache stores extracted playlists keyed by source URL so repeat
// batch calls against the same playlist skip re-extraction.
//
// Get returns (nil, nil) on a miss; implementations decide staleness.
type PlaylistCache interface {
	Get(ctx context.Context, url string) (*models.Playlist, error)
	Put(ctx context.Context, playlist *models.Playlist) error
}

// Request describes one conversion batch.
type Request struct {
	URL            string
	TargetPlatform string
	StartIndex     int
	BatchSize      int
}

// BatchResult aggregates the outcome of one conversion batch.
type BatchResult struct {
	Playlist     *models.Playlist // Extracted playlist metadata (tracks included)
	Results      []models.TrackResult
	Cursor       models.BatchCursor
	SuccessCount int
	FailureCount int
	RateLimited  bool
	RetryAfter   time.Duration // Advisory backoff hint; zero when unknown
}

// SuccessRate returns successes over processed tracks, defined as 0 when the
// window was empty.
func (r *BatchResult) SuccessRate() float64 {
	total := r.SuccessCount + r.FailureCount
	if total == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(total)
}

// Converter composes extraction and matching over a session-scoped batch.
type Converter struct {
	sessions SessionManager
	registry ExtractorRegistry
	matcher  Matcher
	cache    PlaylistCache // Optional; nil disables caching
	logger   *log.Logger
}

// NewConverter creates a Converter. cache may be nil, in which case every
// batch re-extracts the playlist.
func NewConverter(sessions SessionManager, registry ExtractorRegistry, matcher Matcher, cache PlaylistCache, logger *log.Logger) *Converter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Converter{
		sessions: sessions,
		registry: registry,
		matcher:  matcher,
		cache:    cache,
		logger:   logger,
	}
}

// Convert runs one batch window of a playlist conversion.
//
// The session is acquired once, reused for extraction and every track match
// in the window, and released on every exit path. Per-track failures are
// recorded and the window always completes; only session-level failures
// propagate as errors.
func (c *Converter) Convert(ctx context.Context, req Request) (*BatchResult, error) {
	if err := ValidateRange(req.StartIndex, req.BatchSize); err != nil {
		return nil, err
	}

	extractor, err := c.registry.Lookup(req.URL)
	if err != nil {
		return nil, err
	}

	requestID := shared.GenerateID()
	logger := c.logger.With("request_id", requestID, "url", req.URL, "platform", extractor.Platform())

	var result *BatchResult
	err = c.sessions.WithSession(ctx, func(sess *browser.Session) error {
		playlist, err := c.loadPlaylist(ctx, sess, extractor, req.URL, logger)
		if err != nil {
			return err
		}

		result = c.convertWindow(ctx, sess, playlist, req, logger)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("batch complete",
		"start", result.Cursor.Start,
		"end", result.Cursor.End,
		"total", result.Cursor.Total,
		"success", result.SuccessCount,
		"failure", result.FailureCount,
		"rate_limited", result.RateLimited,
	)
	return result, nil
}

// loadPlaylist returns the cached playlist for the URL or extracts it fresh.
func (c *Converter) loadPlaylist(ctx context.Context, sess *browser.Session, extractor extract.Extractor, url string, logger *log.Logger) (*models.Playlist, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, url)
		if err != nil {
			logger.Warn("playlist cache read failed", "error", err)
		} else if cached != nil {
			logger.Debug("playlist cache hit", "tracks", cached.Total())
			return cached, nil
		}
	}

	playlist, err := extractor.Extract(ctx, sess, url)
	if err != nil {
		return nil, err
	}
	logger.Info("playlist extracted", "name", playlist.Name, "tracks", playlist.Total())

	if c.cache != nil {
		if err := c.cache.Put(ctx, playlist); err != nil {
			logger.Warn("playlist cache write failed", "error", err)
		}
	}
	return playlist, nil
}

// convertWindow matches every track in the requested window sequentially.
// The automation handle is not safe for concurrent use.
func (c *Converter) convertWindow(ctx context.Context, sess *browser.Session, playlist *models.Playlist, req Request, logger *log.Logger) *BatchResult {
	cursor := NewBatchCursor(req.StartIndex, req.BatchSize, playlist.Total())
	result := &BatchResult{
		Playlist: playlist,
		Cursor:   cursor,
		Results:  make([]models.TrackResult, 0, cursor.End-cursor.Start),
	}

	for _, track := range playlist.Tracks[cursor.Start:cursor.End] {
		tr := c.convertTrack(ctx, sess, track, logger)
		result.Results = append(result.Results, tr)
		if tr.Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	if limited, hint := sess.RateLimitSignal(); limited {
		result.RateLimited = true
		result.RetryAfter = hint
	}
	return result
}

// convertTrack matches one source track, capturing any failure into the
// result rather than propagating it.
func (c *Converter) convertTrack(ctx context.Context, sess *browser.Session, track models.SourceTrack, logger *log.Logger) models.TrackResult {
	artistName := ""
	if len(track.Artists) > 0 {
		artistName = track.Artists[0]
		for _, a := range track.Artists[1:] {
			artistName += ", " + a
		}
	}

	candidates, err := c.matcher.Search(ctx, sess, track.Name, artistName, nil)
	if err != nil {
		status := models.StatusFailed
		if errors.Is(err, shared.ErrRateLimited) {
			status = models.StatusRateLimited
		}
		logger.Warn("track search failed", "track", track.Name, "position", track.Position, "error", err)
		return models.TrackResult{
			Source:  track,
			Success: false,
			Error:   err.Error(),
			Status:  status,
		}
	}

	best, ok := c.matcher.PickBest(candidates, track.Name, artistName, track.DurationSec)
	if !ok {
		return models.TrackResult{
			Source:  track,
			Success: false,
			Error:   fmt.Sprintf("no match found for %q by %q", track.Name, artistName),
			Status:  models.StatusNoMatch,
		}
	}

	return models.TrackResult{
		Source:  track,
		Match:   best,
		Success: true,
		Status:  models.StatusMatched,
	}
}

// FindAlternatives searches for replacement candidates for a single track,
// excluding URLs the user has already rejected. It acquires its own session,
// independent of any in-flight batch, and returns the ranked candidates
// without selecting one; accepting an alternative is the caller's decision.
func (c *Converter) FindAlternatives(ctx context.Context, trackName, artistName string, blacklistedURLs []string) ([]models.MatchCandidate, error) {
	if trackName == "" {
		return nil, fmt.Errorf("%w: track name is required", shared.ErrMissingArgument)
	}

	var candidates []models.MatchCandidate
	err := c.sessions.WithSession(ctx, func(sess *browser.Session) error {
		found, err := c.matcher.Search(ctx, sess, trackName, artistName, blacklistedURLs)
		if err != nil {
			return err
		}
		candidates = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
