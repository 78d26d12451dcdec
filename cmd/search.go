package main

import (
	"context"
	"fmt"

	"github.com/playlift/playlift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints ranked alternative matches for a single track.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	track := cmd.StringArg("track")
	if track == "" {
		return fmt.Errorf("%w: track name is required", shared.ErrMissingArgument)
	}

	artist := cmd.String("artist")
	exclude := cmd.StringSlice("exclude")

	r.logger.Info("searching alternatives", "track", track, "artist", artist)

	candidates, err := r.converter.FindAlternatives(ctx, track, artist, exclude)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(candidates, cmd.Bool("pretty"))
	}

	if len(candidates) == 0 {
		r.writePlainln("%s", r.styles.Warn("No matches found."))
		return nil
	}

	r.writePlainHeader("Alternative Matches")
	for i, c := range candidates {
		r.writePlain("%d. %s - %s\n", i+1, r.styles.OK(c.Title), c.Uploader)
		r.writePlain("   %s\n", r.styles.Help(c.URL))
	}

	return nil
}
