// package repositories implements the playlist extraction cache
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playlift/playlift/internal/models"
)

// PlaylistCacheRepository caches extracted playlists in SQLite, keyed by
// source URL. Implements convert.PlaylistCache.
type PlaylistCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPlaylistCacheRepository creates a repository over an open, migrated
// database. Entries older than ttl are treated as misses; a zero ttl keeps
// entries forever.
func NewPlaylistCacheRepository(db *sql.DB, ttl time.Duration) *PlaylistCacheRepository {
	return &PlaylistCacheRepository{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached playlist for a URL, or (nil, nil) when absent or
// expired. Expired rows are deleted opportunistically.
func (r *PlaylistCacheRepository) Get(ctx context.Context, url string) (*models.Playlist, error) {
	var (
		platform    string
		name        string
		tracksJSON  string
		extractedAt time.Time
	)

	row := r.db.QueryRowContext(ctx,
		"SELECT platform, name, tracks, extracted_at FROM playlist_cache WHERE url = ?", url)
	if err := row.Scan(&platform, &name, &tracksJSON, &extractedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlist cache: %w", err)
	}

	if r.ttl > 0 && r.now().Sub(extractedAt) > r.ttl {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM playlist_cache WHERE url = ?", url); err != nil {
			return nil, fmt.Errorf("failed to evict expired playlist: %w", err)
		}
		return nil, nil
	}

	var tracks []models.SourceTrack
	if err := json.Unmarshal([]byte(tracksJSON), &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode cached tracks: %w", err)
	}

	return &models.Playlist{
		URL:      url,
		Platform: platform,
		Name:     name,
		Tracks:   tracks,
	}, nil
}

// Put stores (or replaces) the cached playlist for its URL.
func (r *PlaylistCacheRepository) Put(ctx context.Context, playlist *models.Playlist) error {
	tracksJSON, err := json.Marshal(playlist.Tracks)
	if err != nil {
		return fmt.Errorf("failed to encode tracks: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO playlist_cache (url, platform, name, tracks, extracted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			platform = excluded.platform,
			name = excluded.name,
			tracks = excluded.tracks,
			extracted_at = excluded.extracted_at`,
		playlist.URL, playlist.Platform, playlist.Name, string(tracksJSON), r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write playlist cache: %w", err)
	}
	return nil
}

// Purge removes every expired entry. Intended for periodic housekeeping; the
// read path already evicts lazily.
func (r *PlaylistCacheRepository) Purge(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}

	cutoff := r.now().UTC().Add(-r.ttl)
	res, err := r.db.ExecContext(ctx, "DELETE FROM playlist_cache WHERE extracted_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge playlist cache: %w", err)
	}
	return res.RowsAffected()
}
