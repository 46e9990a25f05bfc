package models

import "time"

// Outcome is the tagged result of processing one playlist entry.
type Outcome string

const (
	// OutcomeResolved means a local audio file exists for the entry (downloaded now or earlier).
	OutcomeResolved Outcome = "resolved"
	// OutcomeSkipped means the entry had no underlying track, or repeated an id already handled.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the resolver could not produce a file; the run continues.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}

// TrackResult describes what happened to the entry at Position.
type TrackResult struct {
	Position int
	Entry    *TrackEntry // nil for skipped unavailable entries
	Query    string
	Outcome  Outcome
	Cached   bool // resolved without network activity
	Err      error
}

// Reason returns the failure message, or "" when the result carries no error.
func (r TrackResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// RunStatus is the terminal state recorded for a sync run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunRecord is a persisted summary of one sync run.
type RunRecord struct {
	ID           string     `json:"id"`
	Sequence     int        `json:"sequence"` // human-readable run number assigned by the ledger
	PlaylistID   string     `json:"playlist_id"`
	PlaylistName string     `json:"playlist_name"`
	Status       RunStatus  `json:"status"`
	Error        string     `json:"error,omitempty"`
	Resolved     int        `json:"resolved"`
	Cached       int        `json:"cached"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// TrackRecord is a persisted per-track outcome.
type TrackRecord struct {
	RunID     string    `json:"run_id"`
	Position  int       `json:"position"`
	TrackID   string    `json:"track_id,omitempty"`
	Query     string    `json:"query,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Cached    bool      `json:"cached"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
