package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playcast/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(os.LookupEnv)
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	runner := NewRunner(RunnerOpts{Config: config, Logger: logger})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig builds the configuration from the embedded defaults, an optional TOML file and the environment.
//
// The file named by PLAYCAST_CONFIG must exist; config.toml in the working directory is used when present.
func loadConfig(lookup func(string) (string, bool)) (*shared.Config, error) {
	config := shared.DefaultConfig()

	path, explicit := lookup(shared.EnvConfigPath)
	if !explicit || path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); err != nil {
			config.ApplyEnv(lookup)
			return config, nil
		}
	}

	loaded, err := shared.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	loaded.ApplyEnv(lookup)
	return loaded, nil
}

// newApp builds the root command. Running it without a subcommand performs a sync.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playcast",
		Usage:   "Mirror a Spotify playlist as local MP3 files and a podcast feed",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist ID to mirror (overrides " + shared.EnvPlaylistID + ")",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory the feed and audio files are written to",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(r.logger, log.DebugLevel)
			}
			r.applyFlags(cmd)
			return ctx, nil
		},
		Action:   r.Sync,
		Commands: r.register(),
	}
}
