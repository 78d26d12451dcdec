package main

import (
	"path/filepath"
	"testing"

	"github.com/playlift/playlift/internal/shared"
)

func TestBuildConverter(t *testing.T) {
	t.Run("without a cache path", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Cache.Path = ""

		converter, db, err := buildConverter(config, shared.NewLogger(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if converter == nil {
			t.Fatal("expected a converter")
		}
		if db != nil {
			t.Error("expected no database handle without a cache path")
		}
	})

	t.Run("cache schema is ready on a fresh database", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

		converter, db, err := buildConverter(config, shared.NewLogger(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if converter == nil {
			t.Fatal("expected a converter")
		}
		if db == nil {
			t.Fatal("expected a database handle")
		}
		defer db.Close()

		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'playlist_cache'").Scan(&name)
		if err != nil {
			t.Fatalf("playlist_cache table missing: %v", err)
		}
	})
}
