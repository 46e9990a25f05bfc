// package tasks implements the playlist mirror pipeline.
//
// The core abstraction is SyncEngine, which fetches a playlist, materializes each track and regenerates the feed.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/resolver"
	"github.com/desertthunder/playcast/internal/services"
	"github.com/desertthunder/playcast/internal/shared"
)

// RunResult contains all data from a sync run.
type RunResult struct {
	RunID    string                   // Ledger id of the run
	Snapshot *models.PlaylistSnapshot // Playlist as fetched (nil if the fetch failed)
	Results  []models.TrackResult     // One result per playlist entry, in order
	Resolved int                      // Entries with a local file, cached ones included
	Cached   int                      // Entries already on disk before this run
	Skipped  int                      // Unavailable or duplicate entries
	Failed   int                      // Entries the resolver could not materialize
}

// SyncEngine defines the operations of the mirror pipeline.
type SyncEngine interface {
	// Run fetches the playlist, materializes every available track and regenerates the feed.
	// Per-track failures are reported in the result; only catalog and feed failures return an error.
	Run(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*RunResult, error)

	// Publish fetches the playlist and regenerates the feed without downloading anything.
	Publish(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*RunResult, error)
}

// Materializer resolves a track to a local file. Implemented by [resolver.Resolver].
type Materializer interface {
	Resolve(ctx context.Context, query, dest string, entry models.TrackEntry) resolver.Result
	Sweep(audioDir string) error
}

// Publisher writes the feed for a playlist. Implemented by feed.Generator.
type Publisher interface {
	Generate(meta models.PlaylistMetadata, entries []*models.TrackEntry) error
}

// RunRecorder persists runs and per-track outcomes. Implemented by repositories.RunRepository.
//
// Recorder errors are logged and never change the outcome of a run.
type RunRecorder interface {
	StartRun(run *models.RunRecord) error
	RecordTrack(rec models.TrackRecord) error
	FinishRun(run *models.RunRecord) error
}

// EngineOpts contains the dependencies of a [PlaylistEngine].
type EngineOpts struct {
	Catalog  services.Catalog
	Resolver Materializer
	Feed     Publisher
	Recorder RunRecorder // optional
	AudioDir string
	Logger   *log.Logger
	Now      func() time.Time
}

// PlaylistEngine implements SyncEngine.
type PlaylistEngine struct {
	catalog  services.Catalog
	resolver Materializer
	feed     Publisher
	recorder RunRecorder
	ledger   RunRecorder // recorder for the current run; nil once StartRun failed
	audioDir string
	logger   *log.Logger
	now      func() time.Time
	phase    Phase
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
func NewPlaylistEngine(opts EngineOpts) (*PlaylistEngine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Feed == nil {
		return nil, fmt.Errorf("%w: feed generator not initialized", shared.ErrServiceUnavailable)
	}
	if opts.AudioDir == "" {
		return nil, fmt.Errorf("%w: audio directory not set", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &PlaylistEngine{
		catalog:  opts.Catalog,
		resolver: opts.Resolver,
		feed:     opts.Feed,
		recorder: opts.Recorder,
		audioDir: opts.AudioDir,
		logger:   opts.Logger,
		now:      opts.Now,
		phase:    Idle,
	}, nil
}

// Phase returns the current state of the engine.
func (e *PlaylistEngine) Phase() Phase {
	return e.phase
}

func (e *PlaylistEngine) transition(next Phase) {
	if !e.phase.CanTransition(next) {
		panic(fmt.Sprintf("tasks: illegal phase transition %s -> %s", e.phase, next))
	}
	e.logger.Debug("phase", "from", e.phase, "to", next)
	e.phase = next
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a full sync of playlistID.
func (e *PlaylistEngine) Run(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*RunResult, error) {
	e.phase = Idle
	run := e.startRun(playlistID)
	result := &RunResult{RunID: run.ID}

	if err := e.prepare(); err != nil {
		return result, e.abort(run, progress, err)
	}

	snapshot, err := e.fetch(ctx, playlistID, progress)
	if err != nil {
		return result, e.abort(run, progress, err)
	}
	result.Snapshot = snapshot
	run.PlaylistName = snapshot.Metadata.Name

	e.transition(SyncingTracks)
	e.syncTracks(ctx, run, snapshot.Entries, result, progress)
	run.Resolved, run.Cached, run.Skipped, run.Failed = result.Resolved, result.Cached, result.Skipped, result.Failed

	if err := e.generate(ctx, snapshot, progress); err != nil {
		return result, e.abort(run, progress, err)
	}

	e.finish(run, result, progress)
	return result, nil
}

// Publish regenerates the feed from the current playlist without touching the audio directory.
func (e *PlaylistEngine) Publish(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*RunResult, error) {
	e.phase = Idle

	snapshot, err := e.fetch(ctx, playlistID, progress)
	if err != nil {
		e.transition(Failed)
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}

	if err := e.generate(ctx, snapshot, progress); err != nil {
		e.transition(Failed)
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}

	e.transition(Done)
	return &RunResult{Snapshot: snapshot}, nil
}

// prepare creates the audio directory and clears staging left by interrupted runs.
func (e *PlaylistEngine) prepare() error {
	if err := os.MkdirAll(e.audioDir, 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := e.resolver.Sweep(e.audioDir); err != nil {
		e.logger.Warn("failed to sweep staging directory", "error", err)
	}
	return nil
}

func (e *PlaylistEngine) fetch(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSnapshot, error) {
	e.transition(FetchingCatalog)
	e.sendProgress(progress, fetchingCatalogUpdate(e.catalog.Name(), playlistID))
	e.logger.Info("fetching playlist", "service", e.catalog.Name(), "playlist", playlistID)

	if err := e.catalog.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCatalogFetch, err)
	}

	snapshot, err := e.catalog.FetchPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCatalogFetch, err)
	}

	available := len(snapshot.Available())
	e.logger.Info("found playlist", "name", snapshot.Metadata.Name, "tracks", len(snapshot.Entries), "available", available)
	e.sendProgress(progress, foundPlaylistUpdate(snapshot, available))
	return snapshot, nil
}

func (e *PlaylistEngine) syncTracks(ctx context.Context, run *models.RunRecord, entries []*models.TrackEntry, result *RunResult, progress chan<- ProgressUpdate) {
	total := len(entries)
	seen := make(map[string]bool, total)
	result.Results = make([]models.TrackResult, 0, total)

	for i, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		res := models.TrackResult{Position: i, Entry: entry}

		switch {
		case entry == nil:
			res.Outcome = models.OutcomeSkipped
			e.logger.Debug("skipping unavailable track", "position", i)
		case seen[entry.ID]:
			res.Outcome = models.OutcomeSkipped
			res.Query = entry.Query()
			res.Err = fmt.Errorf("duplicate track id %s", entry.ID)
			e.logger.Warn("skipping duplicate track", "id", entry.ID, "position", i)
		default:
			seen[entry.ID] = true
			res.Query = entry.Query()
			dest := filepath.Join(e.audioDir, entry.Filename())

			r := e.resolver.Resolve(ctx, res.Query, dest, *entry)
			if r.Outcome == models.OutcomeFailed && ctx.Err() != nil {
				e.logger.Warn("sync interrupted", "position", i, "remaining", total-i)
				return
			}
			res.Outcome, res.Cached, res.Err = r.Outcome, r.Cached, r.Err
		}

		switch res.Outcome {
		case models.OutcomeResolved:
			result.Resolved++
			if res.Cached {
				result.Cached++
			}
		case models.OutcomeSkipped:
			result.Skipped++
		case models.OutcomeFailed:
			result.Failed++
		}

		result.Results = append(result.Results, res)
		e.record(run, res)
		e.sendProgress(progress, trackUpdate(i+1, total, res))
	}
}

func (e *PlaylistEngine) generate(ctx context.Context, snapshot *models.PlaylistSnapshot, progress chan<- ProgressUpdate) error {
	e.transition(GeneratingFeed)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInterrupted, err)
	}
	e.sendProgress(progress, generatingFeedUpdate(len(snapshot.Available())))

	if err := e.feed.Generate(snapshot.Metadata, snapshot.Entries); err != nil {
		if errors.Is(err, shared.ErrFeedWrite) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrFeedWrite, err)
	}
	return nil
}

func (e *PlaylistEngine) startRun(playlistID string) *models.RunRecord {
	run := &models.RunRecord{
		ID:         shared.GenerateID(),
		PlaylistID: playlistID,
		Status:     models.RunRunning,
		StartedAt:  e.now(),
	}

	e.ledger = e.recorder
	if e.ledger != nil {
		if err := e.ledger.StartRun(run); err != nil {
			e.logger.Warn("failed to record run, continuing without ledger", "error", err)
			e.ledger = nil
		}
	}
	return run
}

func (e *PlaylistEngine) record(run *models.RunRecord, res models.TrackResult) {
	if e.ledger == nil {
		return
	}

	rec := models.TrackRecord{
		RunID:     run.ID,
		Position:  res.Position,
		Query:     res.Query,
		Outcome:   res.Outcome,
		Cached:    res.Cached,
		Reason:    res.Reason(),
		CreatedAt: e.now(),
	}
	if res.Entry != nil {
		rec.TrackID = res.Entry.ID
	}

	if err := e.ledger.RecordTrack(rec); err != nil {
		e.logger.Warn("failed to record track", "position", res.Position, "error", err)
	}
}

func (e *PlaylistEngine) finish(run *models.RunRecord, result *RunResult, progress chan<- ProgressUpdate) {
	e.transition(Done)
	e.logger.Info("sync complete", "resolved", result.Resolved, "cached", result.Cached, "skipped", result.Skipped, "failed", result.Failed)
	e.sendProgress(progress, doneUpdate(result))

	run.Status = models.RunCompleted
	e.closeRun(run)
}

// abort moves the engine to Failed and records the error.
func (e *PlaylistEngine) abort(run *models.RunRecord, progress chan<- ProgressUpdate, err error) error {
	from := e.phase
	e.transition(Failed)
	e.logger.Error("sync failed", "phase", from, "error", err)
	e.sendProgress(progress, failedUpdate(err))

	run.Status = models.RunFailed
	run.Error = err.Error()
	e.closeRun(run)
	return err
}

func (e *PlaylistEngine) closeRun(run *models.RunRecord) {
	finished := e.now()
	run.FinishedAt = &finished

	if e.ledger == nil {
		return
	}
	if err := e.ledger.FinishRun(run); err != nil {
		e.logger.Warn("failed to finish run record", "error", err)
	}
}
