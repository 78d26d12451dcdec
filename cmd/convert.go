package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/playlift/playlift/internal/convert"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Convert runs one or more conversion batches and prints per-track results.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: playlist URL is required", shared.ErrMissingArgument)
	}

	target := cmd.String("target")
	start := cmd.Int("start")
	batchSize := cmd.Int("batch-size")
	runAll := cmd.Bool("all")
	asJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("starting conversion", "url", url, "target", target, "start", start)

	var batches []*convert.BatchResult
	successTotal, failureTotal := 0, 0

	for {
		result, err := r.converter.Convert(ctx, convert.Request{
			URL:            url,
			TargetPlatform: target,
			StartIndex:     start,
			BatchSize:      batchSize,
		})
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		batches = append(batches, result)
		successTotal += result.SuccessCount
		failureTotal += result.FailureCount

		if !asJSON {
			r.printBatch(result)
		}

		if result.RateLimited {
			if !asJSON {
				r.writePlainln("%s", r.styles.Warn("Rate limiting detected; stopping here. Retry later from the printed index."))
			}
			break
		}
		if !runAll || !result.Cursor.HasMore {
			break
		}
		start = result.Cursor.End
	}

	if asJSON {
		return r.writeJSON(batches, pretty)
	}

	last := batches[len(batches)-1]
	r.writePlain("\n")
	r.writePlainHeader("Conversion Summary")
	if last.Playlist != nil {
		r.writePlain("Playlist: %s (%d tracks)\n", last.Playlist.Name, last.Cursor.Total)
	}
	r.writePlain("Matched: %s  Failed: %s\n",
		r.styles.OK(fmt.Sprintf("%d", successTotal)),
		r.styles.Err(fmt.Sprintf("%d", failureTotal)))
	if last.Cursor.HasMore {
		r.writePlain("Next batch starts at index %d\n", last.Cursor.End)
	}

	return nil
}

// printBatch writes one line per track in the processed window.
func (r *Runner) printBatch(result *convert.BatchResult) {
	r.writePlain("\nBatch [%d, %d) of %d\n", result.Cursor.Start, result.Cursor.End, result.Cursor.Total)

	for _, tr := range result.Results {
		artist := strings.Join(tr.Source.Artists, ", ")
		switch tr.Status {
		case models.StatusMatched:
			r.writePlain("  %s %s - %s\n", r.styles.OK("✓"), tr.Source.Name, artist)
			r.writePlain("    %s\n", r.styles.Help(tr.Match.URL))
		case models.StatusRateLimited:
			r.writePlain("  %s %s - %s (rate limited)\n", r.styles.Warn("!"), tr.Source.Name, artist)
		default:
			r.writePlain("  %s %s - %s (%s)\n", r.styles.Err("✗"), tr.Source.Name, artist, tr.Error)
		}
	}
}
