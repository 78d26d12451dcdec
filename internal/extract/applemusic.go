package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

var appleMusicContentSelectors = []string{
	`div.songs-list`,
	`div.track-list`,
	`div.songs-list-row`,
}

const appleMusicExtractScript = `
(() => {
	const data = { name: '', tracks: [] };

	const title = document.querySelector('h1.product-name, h1[data-testid="non-editable-product-title"], h1');
	if (title) {
		data.name = title.textContent.trim();
	}

	let rows = [];
	for (const selector of ['div.songs-list-row', 'div.track-list__item', 'div.tracklist-item']) {
		const found = document.querySelectorAll(selector);
		if (found.length > 0) {
			rows = Array.from(found);
			break;
		}
	}

	for (const row of rows) {
		if (row.classList.contains('songs-list-header') ||
			row.getAttribute('role') === 'heading' ||
			row.classList.contains('songs-list__header')) {
			continue;
		}

		let name = '';
		for (const selector of ['div.songs-list-row__song-name', 'div.song-name', 'a[href*="/song/"]']) {
			const el = row.querySelector(selector);
			if (el && el.textContent.trim()) {
				name = el.textContent.trim();
				break;
			}
		}
		if (!name) continue;

		const artists = [];
		for (const selector of ['div.songs-list-row__by-line a', 'div.by-line a', 'a[href*="/artist/"]']) {
			for (const a of row.querySelectorAll(selector)) {
				const artist = a.textContent.trim();
				if (artist && !artists.includes(artist)) artists.push(artist);
			}
			if (artists.length > 0) break;
		}

		let durationSec = 0;
		const durEl = row.querySelector('time, div.songs-list-row__length');
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

// AppleMusicExtractor extracts playlists from the Apple Music web preview.
type AppleMusicExtractor struct{}

// NewAppleMusicExtractor creates an Apple Music playlist extractor.
func NewAppleMusicExtractor() *AppleMusicExtractor {
	return &AppleMusicExtractor{}
}

func (e *AppleMusicExtractor) Platform() string {
	return "apple-music"
}

func (e *AppleMusicExtractor) Matches(url string) bool {
	return strings.Contains(url, "music.apple.com")
}

// Extract loads the playlist page and reads its track listing.
func (e *AppleMusicExtractor) Extract(ctx context.Context, sess *browser.Session, url string) (*models.Playlist, error) {
	if err := sess.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExtractionTimeout, err)
	}

	if err := waitForContent(ctx, sess, appleMusicContentSelectors); err != nil {
		return nil, err
	}

	_ = sess.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)", nil)

	var raw rawPlaylist
	if err := sess.Evaluate(ctx, appleMusicExtractScript, &raw); err != nil {
		sess.CheckThrottled(ctx)
		return nil, fmt.Errorf("%w: evaluating track extraction: %v", shared.ErrParseFailure, err)
	}

	return buildPlaylist(e.Platform(), url, raw)
}
