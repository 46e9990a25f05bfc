package main

import (
	"context"

	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/tasks"
	"github.com/desertthunder/playcast/internal/ui"
	"github.com/urfave/cli/v3"
)

// Sync mirrors the configured playlist: downloads missing tracks and regenerates the feed.
//
// Per-track failures are listed in the summary but do not fail the command.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	engine, closeLedger, err := r.newEngine(ctx, true)
	if err != nil {
		return err
	}
	defer closeLedger()

	playlistID := r.config.Sync.PlaylistID
	r.logger.Info("starting sync", "playlist", playlistID, "output", r.config.Sync.OutputDir)

	result, err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
		return engine.Run(ctx, playlistID, progress)
	})
	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("Playlist: %s (%d tracks)\n", result.Snapshot.Metadata.Name, len(result.Snapshot.Entries))
	r.writePlain("Tracks: %s\n", ui.Counts(result.Resolved, result.Cached, result.Skipped, result.Failed))
	r.writePlain("Feed: %s\n", r.config.FeedPath())

	if result.Failed > 0 {
		r.writePlain("\nFailed to resolve %d tracks:\n", result.Failed)
		for _, res := range result.Results {
			if res.Outcome == models.OutcomeFailed {
				r.writePlain("  - %s - %s: %s\n", res.Entry.PrimaryArtist, res.Entry.Title, res.Reason())
			}
		}
	}

	return nil
}

// Feed regenerates the feed and companion playlist from the catalog without downloading.
func (r *Runner) Feed(ctx context.Context, cmd *cli.Command) error {
	engine, closeLedger, err := r.newEngine(ctx, false)
	if err != nil {
		return err
	}
	defer closeLedger()

	result, err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
		return engine.Publish(ctx, r.config.Sync.PlaylistID, progress)
	})
	if err != nil {
		return err
	}

	r.writePlain("\n%s %s (%d items)\n", ui.OK("✓ Feed written:"), r.config.FeedPath(), len(result.Snapshot.Available()))
	if path := r.config.PlaylistPath(); path != "" {
		r.writePlain("%s %s\n", ui.OK("✓ Playlist written:"), path)
	}
	return nil
}

// runWithProgress drains engine progress into the output while op runs.
func (r *Runner) runWithProgress(op func(chan<- tasks.ProgressUpdate) (*tasks.RunResult, error)) (*tasks.RunResult, error) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.printProgress(update)
		}
	}()

	result, err := op(progress)
	close(progress)
	<-done
	return result, err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchingCatalog:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.SyncingTracks:
		if res, ok := update.Data.(models.TrackResult); ok {
			r.writePlain("   %s\n", ui.Outcome(res.Outcome, res.Cached, update.Message))
		} else {
			r.writePlain("   %s\n", update.Message)
		}
	case tasks.GeneratingFeed:
		r.writePlain("\n📝 %s\n", update.Message)
	case tasks.Failed:
		r.writePlain("\n%s\n", ui.Err(update.Message))
	}
}
