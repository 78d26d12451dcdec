package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// Spotify's web player renders the track list client-side, so extraction
// waits for the tracklist container and then reads the DOM from inside the
// page. Selector fallbacks track the markup variants Spotify has shipped.
var spotifyContentSelectors = []string{
	`div[data-testid="playlist-tracklist"]`,
	`div[data-testid="track-list"]`,
	`div.tracklist-container`,
}

const spotifyExtractScript = `
(() => {
	const data = { name: '', tracks: [] };

	const title = document.querySelector('h1');
	if (title) {
		data.name = title.textContent.trim();
	}

	let rows = document.querySelectorAll('div[data-testid="tracklist-row"]');
	if (rows.length === 0) {
		rows = document.querySelectorAll('div[role="row"]');
	}

	for (const row of rows) {
		const nameEl = row.querySelector('a[data-testid="internal-track-link"]') ||
			row.querySelector('a[aria-label*="play"]');
		if (!nameEl) continue;

		const name = nameEl.textContent.trim();
		if (!name || name === 'Title' || name === '#') continue;

		const artists = [];
		for (const a of row.querySelectorAll('a[href*="artist"]')) {
			const artist = a.textContent.trim();
			if (artist && !artists.includes(artist)) artists.push(artist);
		}

		let durationSec = 0;
		const durEl = row.querySelector('div[data-testid="tracklist-duration"], [aria-colindex="5"]');
		if (durEl) {
			const parts = durEl.textContent.trim().split(':').map(Number);
			if (parts.length === 2 && !parts.some(isNaN)) {
				durationSec = parts[0] * 60 + parts[1];
			}
		}

		data.tracks.push({ name: name, artists: artists, duration_sec: durationSec });
	}

	return data;
})()
`

// SpotifyExtractor extracts playlists from the Spotify web player.
type SpotifyExtractor struct{}

// NewSpotifyExtractor creates a Spotify playlist extractor.
func NewSpotifyExtractor() *SpotifyExtractor {
	return &SpotifyExtractor{}
}

func (e *SpotifyExtractor) Platform() string {
	return "spotify"
}

func (e *SpotifyExtractor) Matches(url string) bool {
	return strings.Contains(url, "open.spotify.com/playlist") ||
		strings.Contains(url, "spotify.com/playlist")
}

// Extract loads the playlist page and reads its track listing.
func (e *SpotifyExtractor) Extract(ctx context.Context, sess *browser.Session, url string) (*models.Playlist, error) {
	if err := sess.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExtractionTimeout, err)
	}

	if err := waitForContent(ctx, sess, spotifyContentSelectors); err != nil {
		return nil, err
	}

	// Nudge lazy rows into the DOM before reading.
	_ = sess.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)", nil)

	var raw rawPlaylist
	if err := sess.Evaluate(ctx, spotifyExtractScript, &raw); err != nil {
		sess.CheckThrottled(ctx)
		return nil, fmt.Errorf("%w: evaluating track extraction: %v", shared.ErrParseFailure, err)
	}

	return buildPlaylist(e.Platform(), url, raw)
}
