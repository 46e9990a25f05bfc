// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand runs the full playlist mirror
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Download missing tracks and regenerate the feed",
		Action: r.Sync,
	}
}

// feedCommand regenerates the feed without downloading
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "feed",
		Usage:  "Regenerate the feed and playlist from the catalog without downloading",
		Action: r.Feed,
	}
}

// historyCommand reads the sync ledger
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
			&cli.IntFlag{
				Name:  "run",
				Usage: "Show the per-track outcomes of run number N",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Show tracks that failed in the latest completed run",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format for --run: table, csv, markdown or txt",
				Value:   "table",
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
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete all but the most recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Number of runs to keep",
						Value: 50,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the ledger.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"c"},
						Usage:   "Path of the configuration file to create",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the sync ledger and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
