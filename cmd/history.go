package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/playcast/internal/formatter"
	"github.com/desertthunder/playcast/internal/repositories"
	"github.com/desertthunder/playcast/internal/shared"
	"github.com/desertthunder/playcast/internal/ui"
	"github.com/urfave/cli/v3"
)

// History lists recorded sync runs, or the tracks of one run with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	switch {
	case cmd.Bool("failed"):
		return r.historyFailed(cmd, repo)
	case cmd.Int("run") > 0:
		return r.historyRun(cmd, repo, cmd.Int("run"))
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet. Run %s first.\n", ui.Help("playcast sync"))
		return nil
	}

	r.writePlain("%s\n", formatter.RunsTable(runs))
	return nil
}

func (r *Runner) historyRun(cmd *cli.Command, repo *repositories.RunRepository, sequence int) error {
	run, err := repo.GetBySequence(sequence)
	if errors.Is(err, repositories.ErrRunNotFound) {
		return fmt.Errorf("%w: no run #%d", shared.ErrInvalidArgument, sequence)
	} else if err != nil {
		return err
	}

	tracks, err := repo.Tracks(run.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"run": run, "tracks": tracks}, cmd.Bool("pretty"))
	}

	format := cmd.String("format")
	data, err := formatter.Export(format, run, tracks)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if format == formatter.FormatTable {
		r.writePlain("%s %s\n", ui.Title(fmt.Sprintf("Run #%d", run.Sequence)), ui.Counts(run.Resolved, run.Cached, run.Skipped, run.Failed))
	}
	return r.writePlain("%s", data)
}

func (r *Runner) historyFailed(cmd *cli.Command, repo *repositories.RunRepository) error {
	playlistID := r.config.Sync.PlaylistID
	if playlistID == "" {
		return fmt.Errorf("%w: %s is not set", shared.ErrMissingConfig, shared.EnvPlaylistID)
	}

	failed, err := repo.LastFailures(playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(failed, cmd.Bool("pretty"))
	}

	if len(failed) == 0 {
		r.writePlain("%s\n", ui.OK("✓ No failed tracks in the latest completed run"))
		return nil
	}

	r.writePlain("%s\n", formatter.TracksTable(failed))
	return nil
}

// HistoryPrune deletes all but the most recent runs from the ledger.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := repo.Prune(cmd.Int("keep"))
	if err != nil {
		return err
	}

	r.logger.Info("pruned sync ledger", "deleted", deleted, "kept", cmd.Int("keep"))
	r.writePlain("%s %d runs deleted\n", ui.OK("✓"), deleted)
	return nil
}
