package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// A pool of one keeps every statement on the same in-memory database.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		URL:      "https://open.spotify.com/playlist/abc",
		Platform: "spotify",
		Name:     "Morning Mix",
		Tracks: []models.SourceTrack{
			{Name: "First", Artists: []string{"A"}, DurationSec: 180, Position: 0},
			{Name: "Second", Artists: []string{"B", "C"}, DurationSec: 210, Position: 1},
		},
	}
}

func TestPlaylistCacheRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), time.Hour)
		playlist := samplePlaylist()

		if err := repo.Put(ctx, playlist); err != nil {
			t.Fatalf("failed to store playlist: %v", err)
		}

		got, err := repo.Get(ctx, playlist.URL)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if got == nil {
			t.Fatal("expected a cache hit")
		}
		if got.Name != playlist.Name || got.Platform != playlist.Platform {
			t.Errorf("metadata mismatch: %+v", got)
		}
		if got.Total() != 2 {
			t.Fatalf("expected 2 tracks, got %d", got.Total())
		}
		if got.Tracks[1].Position != 1 || got.Tracks[1].Name != "Second" {
			t.Errorf("track ordering lost: %+v", got.Tracks)
		}
		if len(got.Tracks[1].Artists) != 2 {
			t.Errorf("artist list lost: %+v", got.Tracks[1].Artists)
		}
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), time.Hour)

		got, err := repo.Get(ctx, "https://open.spotify.com/playlist/unknown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected a miss, got %+v", got)
		}
	})

	t.Run("put replaces the existing entry", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), time.Hour)
		playlist := samplePlaylist()

		if err := repo.Put(ctx, playlist); err != nil {
			t.Fatalf("failed to store playlist: %v", err)
		}

		playlist.Name = "Renamed"
		playlist.Tracks = playlist.Tracks[:1]
		if err := repo.Put(ctx, playlist); err != nil {
			t.Fatalf("failed to replace playlist: %v", err)
		}

		got, err := repo.Get(ctx, playlist.URL)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		if got.Name != "Renamed" || got.Total() != 1 {
			t.Errorf("expected the replaced entry, got %+v", got)
		}
	})

	t.Run("expired entries read as misses", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), 15*time.Minute)
		playlist := samplePlaylist()

		writeTime := time.Now()
		repo.now = func() time.Time { return writeTime }
		if err := repo.Put(ctx, playlist); err != nil {
			t.Fatalf("failed to store playlist: %v", err)
		}

		repo.now = func() time.Time { return writeTime.Add(16 * time.Minute) }
		got, err := repo.Get(ctx, playlist.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected expiry, got %+v", got)
		}

		// The expired row is evicted, not just hidden.
		var count int
		if err := repo.db.QueryRow("SELECT COUNT(*) FROM playlist_cache").Scan(&count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 0 {
			t.Errorf("expected the expired row to be deleted, found %d", count)
		}
	})

	t.Run("zero ttl keeps entries forever", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), 0)
		playlist := samplePlaylist()

		writeTime := time.Now()
		repo.now = func() time.Time { return writeTime }
		if err := repo.Put(ctx, playlist); err != nil {
			t.Fatalf("failed to store playlist: %v", err)
		}

		repo.now = func() time.Time { return writeTime.Add(1000 * time.Hour) }
		got, err := repo.Get(ctx, playlist.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Error("expected a hit with ttl disabled")
		}
	})

	t.Run("purge removes only expired rows", func(t *testing.T) {
		repo := NewPlaylistCacheRepository(setupTestDB(t), 15*time.Minute)

		old := samplePlaylist()
		old.URL = "https://open.spotify.com/playlist/old"
		fresh := samplePlaylist()
		fresh.URL = "https://open.spotify.com/playlist/fresh"

		writeTime := time.Now()
		repo.now = func() time.Time { return writeTime.Add(-time.Hour) }
		if err := repo.Put(ctx, old); err != nil {
			t.Fatalf("failed to store old playlist: %v", err)
		}
		repo.now = func() time.Time { return writeTime }
		if err := repo.Put(ctx, fresh); err != nil {
			t.Fatalf("failed to store fresh playlist: %v", err)
		}

		removed, err := repo.Purge(ctx)
		if err != nil {
			t.Fatalf("purge failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 purged row, got %d", removed)
		}

		got, err := repo.Get(ctx, fresh.URL)
		if err != nil || got == nil {
			t.Errorf("fresh entry should survive purge: %v, %v", got, err)
		}
	})
}
