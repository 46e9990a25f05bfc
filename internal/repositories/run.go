package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
)

// ErrRunNotFound is returned when a run id or sequence does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository records sync runs and their per-track outcomes.
//
// Implements tasks.RunRecorder.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// StartRun inserts run with the next sequence number. An empty ID is generated.
func (r *RunRepository) StartRun(run *models.RunRecord) error {
	if run.PlaylistID == "" {
		return fmt.Errorf("%w: run has no playlist id", shared.ErrInvalidArgument)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.Status == "" {
		run.Status = models.RunRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Sequence = sequence

	query := `
		INSERT INTO runs (id, sequence, playlist_id, playlist_name, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, run.ID, run.Sequence, run.PlaylistID, run.PlaylistName, string(run.Status), run.StartedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// RecordTrack inserts one per-track outcome of a started run.
func (r *RunRepository) RecordTrack(rec models.TrackRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO track_results (run_id, position, track_id, query, outcome, cached, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		rec.RunID,
		rec.Position,
		rec.TrackID,
		rec.Query,
		string(rec.Outcome),
		rec.Cached,
		rec.Reason,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track result: %w", err)
	}

	return nil
}

// FinishRun stores the final status and counters of run.
func (r *RunRepository) FinishRun(run *models.RunRecord) error {
	finished := time.Now()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}

	query := `
		UPDATE runs
		SET playlist_name = ?, status = ?, error = ?, resolved = ?, cached = ?, skipped = ?, failed = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.PlaylistName,
		string(run.Status),
		run.Error,
		run.Resolved,
		run.Cached,
		run.Skipped,
		run.Failed,
		finished.UTC(),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}

	return nil
}

const runColumns = `id, sequence, playlist_id, playlist_name, status, error, resolved, cached, skipped, failed, started_at, finished_at`

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	return r.scan(r.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
}

// GetBySequence retrieves a run by its run number
func (r *RunRepository) GetBySequence(sequence int) (*models.RunRecord, error) {
	return r.scan(r.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE sequence = ?", sequence))
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (r *RunRepository) List(limit int) ([]*models.RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY sequence DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Tracks returns the per-track outcomes of a run in playlist order.
func (r *RunRepository) Tracks(runID string) ([]models.TrackRecord, error) {
	query := `
		SELECT run_id, position, track_id, query, outcome, cached, reason, created_at
		FROM track_results
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query track results: %w", err)
	}
	defer rows.Close()

	var records []models.TrackRecord
	for rows.Next() {
		var (
			rec     models.TrackRecord
			outcome string
		)
		if err := rows.Scan(&rec.RunID, &rec.Position, &rec.TrackID, &rec.Query, &outcome, &rec.Cached, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track result: %w", err)
		}
		rec.Outcome = models.Outcome(outcome)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// LastFailures returns the failed track records of the most recent completed run of a playlist.
func (r *RunRepository) LastFailures(playlistID string) ([]models.TrackRecord, error) {
	var runID string
	err := r.db.QueryRow(`
		SELECT id FROM runs
		WHERE playlist_id = ? AND status = ?
		ORDER BY sequence DESC
		LIMIT 1
	`, playlistID, string(models.RunCompleted)).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last run: %w", err)
	}

	records, err := r.Tracks(runID)
	if err != nil {
		return nil, err
	}

	failed := records[:0]
	for _, rec := range records {
		if rec.Outcome == models.OutcomeFailed {
			failed = append(failed, rec)
		}
	}
	return failed, nil
}

// Prune deletes all but the keep most recent runs; their track results cascade.
func (r *RunRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", shared.ErrInvalidArgument)
	}

	result, err := r.db.Exec(`
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY sequence DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	return result.RowsAffected()
}

func (r *RunRepository) scan(row scanner) (*models.RunRecord, error) {
	var (
		run        models.RunRecord
		status     string
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.PlaylistID,
		&run.PlaylistName,
		&status,
		&run.Error,
		&run.Resolved,
		&run.Cached,
		&run.Skipped,
		&run.Failed,
		&run.StartedAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = models.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
