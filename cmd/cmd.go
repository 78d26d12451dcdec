// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand starts the HTTP API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the conversion HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// convertCommand runs a playlist conversion from the terminal.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a playlist to the target platform",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Target platform to match tracks on",
				Value:   "soundcloud",
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "Zero-based index of the first track to convert",
				Value: 0,
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Aliases: []string{"b"},
				Usage:   "Tracks per batch (5, 10, 20, or 50)",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Keep requesting batches until the playlist is exhausted",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Convert,
	}
}

// searchCommand finds alternative matches for a single track.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the target platform for alternative matches",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "track",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist name to score candidates against",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Candidate URLs to exclude (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// setupCommand handles setup operations for configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the playlist cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
