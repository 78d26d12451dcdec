package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playlift/playlift/internal/browser"
	"github.com/playlift/playlift/internal/convert"
	"github.com/playlift/playlift/internal/extract"
	"github.com/playlift/playlift/internal/match"
	"github.com/playlift/playlift/internal/repositories"
	"github.com/playlift/playlift/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	converter, db, err := buildConverter(config, logger)
	if err != nil {
		logger.Fatalf("failed to initialize services: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Converter: converter,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "playlift",
		Usage:    "Convert playlists between music streaming platforms",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingArgument) || errors.Is(err, shared.ErrInvalidInput) {
			logger.Fatalf("%v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// buildConverter wires the browser manager, extractor registry, match engine,
// and optional playlist cache into a [convert.Converter].
//
// Chrome itself launches lazily on first session acquisition, so startup
// stays cheap for commands that never touch a browser.
func buildConverter(config *shared.Config, logger *log.Logger) (*convert.Converter, *sql.DB, error) {
	factory := browser.NewChromeFactory(browser.ChromeConfig{
		Headless:  config.Browser.Headless,
		UserAgent: config.Browser.UserAgent,
		OpTimeout: time.Duration(config.Browser.NavigationTimeout) * time.Second,
	})

	detection := browser.Detection{
		Markers:          config.RateLimit.Markers,
		LatencyThreshold: time.Duration(config.RateLimit.LatencyThreshold) * time.Second,
	}

	manager := browser.NewManager(factory,
		browser.WithCapacity(config.Browser.Capacity),
		browser.WithAcquireTimeout(time.Duration(config.Browser.AcquireTimeout)*time.Second),
		browser.WithDetection(detection),
		browser.WithManagerLogger(logger),
	)

	engine := match.NewEngine(config.Match, logger)
	registry := extract.DefaultRegistry()

	var db *sql.DB
	var cache convert.PlaylistCache
	if config.Cache.Path != "" {
		var err error
		db, err = shared.NewDatabase(config.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)
		// Idempotent, so a fresh install gets a working cache without a
		// separate setup run.
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		cache = repositories.NewPlaylistCacheRepository(db, config.Cache.TTLDuration())
	}

	return convert.NewConverter(manager, registry, engine, cache, logger), db, nil
}
