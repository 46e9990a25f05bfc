package tasks

import (
	"fmt"

	"github.com/desertthunder/playcast/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (snapshot, track result)
}

// Phase is the state of a [PlaylistEngine] run.
type Phase int

const (
	Idle Phase = iota
	FetchingCatalog
	SyncingTracks
	GeneratingFeed
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FetchingCatalog:
		return "fetching_catalog"
	case SyncingTracks:
		return "syncing_tracks"
	case GeneratingFeed:
		return "generating_feed"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// transitions lists the legal successors of each phase.
var transitions = map[Phase][]Phase{
	Idle:            {FetchingCatalog, Failed},
	FetchingCatalog: {SyncingTracks, GeneratingFeed, Failed},
	SyncingTracks:   {GeneratingFeed},
	GeneratingFeed:  {Done, Failed},
}

// CanTransition reports whether the engine may move from p to next.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether p ends a run.
func (p Phase) Terminal() bool {
	return p == Done || p == Failed
}

func fetchingCatalogUpdate(name, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchingCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s from %s...", playlistID, name),
	}
}

func foundPlaylistUpdate(snapshot *models.PlaylistSnapshot, available int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchingCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks, %d available)", snapshot.Metadata.Name, len(snapshot.Entries), available),
		Data:    snapshot,
	}
}

func trackUpdate(step, total int, res models.TrackResult) ProgressUpdate {
	var msg string
	switch {
	case res.Entry == nil:
		msg = fmt.Sprintf("[%d/%d] - skipped unavailable track", step, total)
	case res.Outcome == models.OutcomeSkipped:
		msg = fmt.Sprintf("[%d/%d] - %s - %s: %s", step, total, res.Entry.PrimaryArtist, res.Entry.Title, res.Reason())
	case res.Outcome == models.OutcomeFailed:
		msg = fmt.Sprintf("[%d/%d] ✗ %s - %s: %s", step, total, res.Entry.PrimaryArtist, res.Entry.Title, res.Reason())
	case res.Cached:
		msg = fmt.Sprintf("[%d/%d] = %s - %s (cached)", step, total, res.Entry.PrimaryArtist, res.Entry.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, res.Entry.PrimaryArtist, res.Entry.Title)
	}

	return ProgressUpdate{
		Phase:   SyncingTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func generatingFeedUpdate(items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GeneratingFeed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating feed with %d items...", items),
	}
}

func doneUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Done,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Sync complete: %d resolved (%d cached), %d skipped, %d failed",
			result.Resolved, result.Cached, result.Skipped, result.Failed),
		Data: result,
	}
}

func failedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync failed: %v", err),
	}
}
