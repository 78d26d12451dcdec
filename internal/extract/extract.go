// package extract implements playlist extraction for supported source platforms
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// Extractor pulls a playlist and its ordered tracks from one source platform.
type Extractor interface {
	// Platform returns the platform tag, e.g. "spotify".
	Platform() string

	// Matches reports whether this extractor handles the given playlist URL.
	Matches(url string) bool

	// Extract navigates the session to the playlist page and returns the
	// parsed playlist. The session is owned by the caller.
	Extract(ctx context.Context, sess *browser.Session, url string) (*models.Playlist, error)
}

// Registry selects an extractor by playlist URL.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry over the given extractors, consulted in order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry returns a registry with all built-in platform extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(NewSpotifyExtractor(), NewAppleMusicExtractor())
}

// Lookup returns the extractor handling the given URL, or
// [shared.ErrUnsupportedPlatform] when no pattern matches.
func (r *Registry) Lookup(url string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.Matches(url) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no extractor for %q", shared.ErrUnsupportedPlatform, url)
}

// Platforms returns the tags of all registered platforms.
func (r *Registry) Platforms() []string {
	tags := make([]string, 0, len(r.extractors))
	for _, e := range r.extractors {
		tags = append(tags, e.Platform())
	}
	return tags
}

// rawTrack is the shape produced by the in-page extraction scripts.
type rawTrack struct {
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	DurationSec int      `json:"duration_sec"`
}

// rawPlaylist is the shape produced by the in-page extraction scripts.
type rawPlaylist struct {
	Name   string     `json:"name"`
	Tracks []rawTrack `json:"tracks"`
}

// buildPlaylist converts script output into a validated models.Playlist with
// positions assigned in display order.
func buildPlaylist(platform, url string, raw rawPlaylist) (*models.Playlist, error) {
	if len(raw.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks recovered from page", shared.ErrParseFailure)
	}

	playlist := &models.Playlist{
		URL:      url,
		Platform: platform,
		Name:     strings.TrimSpace(raw.Name),
		Tracks:   make([]models.SourceTrack, 0, len(raw.Tracks)),
	}
	if playlist.Name == "" {
		playlist.Name = "Untitled Playlist"
	}

	for i, t := range raw.Tracks {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: track at display index %d has no name", shared.ErrParseFailure, i)
		}

		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			if a = strings.TrimSpace(a); a != "" {
				artists = append(artists, a)
			}
		}

		playlist.Tracks = append(playlist.Tracks, models.SourceTrack{
			Name:        name,
			Artists:     artists,
			DurationSec: t.DurationSec,
			Position:    i,
		})
	}

	if err := playlist.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParseFailure, err)
	}
	return playlist, nil
}

// waitForContent waits for any of the given selectors to appear, returning
// [shared.ErrExtractionTimeout] when none become present.
func waitForContent(ctx context.Context, sess *browser.Session, selectors []string) error {
	var lastErr error
	for _, sel := range selectors {
		if err := sess.WaitReady(ctx, sel); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Timeouts frequently coincide with throttle pages; check before failing
	// so the caller learns about both.
	sess.CheckThrottled(ctx)
	return fmt.Errorf("%w: %v", shared.ErrExtractionTimeout, lastErr)
}
