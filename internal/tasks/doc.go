// Package tasks orchestrates the playlist mirror with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.Run] : full sync
//     - Fetches the playlist from the catalog
//     - Resolves every available track to <audio dir>/<id>.mp3 (existing files are kept)
//     - Regenerates the feed from the complete entry list
//     - Per-track failures are reported in [RunResult], never returned as errors
//
//  2. [SyncEngine.Publish] : feed only
//     - Fetches the playlist and regenerates the feed without downloading
//
// # Phases
//
// A run moves through [Idle] → [FetchingCatalog] → [SyncingTracks] → [GeneratingFeed] → [Done].
// Only fetching the catalog or writing the feed can move it to [Failed]; a track that cannot be
// downloaded is recorded and the loop moves on.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for richer output.
// Updates use select with default to prevent blocking.
//
// # Run Ledger
//
// The optional [RunRecorder] interface receives each run and per-track outcome.
// Recorder errors are logged and otherwise ignored.
package tasks
