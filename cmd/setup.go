package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playcast/internal/shared"
	"github.com/desertthunder/playcast/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("%s Configuration written to %s\n", ui.OK("✓"), path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set %s and %s (or fill in [credentials.spotify])\n", shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Set %s to the playlist to mirror\n", shared.EnvPlaylistID)
	r.writePlain("3. Run 'playcast sync'\n")
	return nil
}

// SetupDatabase initializes the sync ledger and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	if path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", path)

	db, err := shared.OpenLedger(path)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("%s Sync ledger ready at %s\n", ui.OK("✓"), path)
	return nil
}
