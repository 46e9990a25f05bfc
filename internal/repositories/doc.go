// Package repositories implements the SQLite sync ledger.
//
// [RunRepository] stores one row per sync run in runs and one row per playlist entry in
// track_results. It is an audit trail: the sync engine writes to it through tasks.RunRecorder
// but never reads it back to decide what to download; the audio directory is the only
// source of truth for that.
//
// Runs carry a sequence number for human-readable ordering (run #42), generated by
// [NextSequence] from the runs_sequence counter table.
package repositories
