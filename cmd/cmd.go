// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles authentication for both services.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage service authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthSpotify,
			},
			{
				Name:  "tidal",
				Usage: "Configure Tidal credentials from a token or browser cURL",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "token",
						Usage: "Tidal API bearer token",
					},
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Tidal numeric user ID",
					},
					&cli.StringFlag{
						Name:  "country-code",
						Usage: "Two-letter market code for catalog lookups",
					},
				},
				Action: r.AuthTidal,
			},
		},
	}
}

// exportCommand writes a library snapshot to disk.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the Spotify library to a snapshot file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Snapshot file path",
				Value:   "snapshot.json",
			},
			&cli.BoolFlag{
				Name:  "skip-favorites",
				Usage: "Leave favorite tracks out of the snapshot",
			},
		},
		Action: r.Export,
	}
}

// importCommand replays a snapshot file into Tidal.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a snapshot file into Tidal",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Snapshot file path",
				Value:   "snapshot.json",
			},
			&cli.StringSliceFlag{
				Name:  "playlist",
				Usage: "Sync only the named playlist (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "skip-favorites",
				Usage: "Skip favorite tracks",
			},
			&cli.BoolFlag{
				Name:  "skip-albums",
				Usage: "Skip saved albums",
			},
			&cli.BoolFlag{
				Name:  "skip-artists",
				Usage: "Skip followed artists",
			},
		},
		Action: r.Import,
	}
}

// syncCommand runs export and import back to back without an intermediate file.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run a full Spotify → Tidal sync",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringSliceFlag{
				Name:  "playlist",
				Usage: "Sync only the named playlist (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "skip-favorites",
				Usage: "Skip favorite tracks",
			},
			&cli.BoolFlag{
				Name:  "skip-albums",
				Usage: "Skip saved albums",
			},
			&cli.BoolFlag{
				Name:  "skip-artists",
				Usage: "Skip followed artists",
			},
		},
		Action: r.Sync,
	}
}

// historyCommand inspects recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "misses",
				Usage: "Show the entities a run could not match",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "run-id",
						Usage:    "Run ID from 'stx history list'",
						Required: true,
					},
				},
				Action: r.HistoryMisses,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist sync.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist sync",
		Action:  r.TUI,
	}
}
