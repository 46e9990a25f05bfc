package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/playcast/internal/models"
	"github.com/desertthunder/playcast/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func startRun(t *testing.T, repo *RunRepository, playlistID string) *models.RunRecord {
	t.Helper()
	run := &models.RunRecord{PlaylistID: playlistID, StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	if err := repo.StartRun(run); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	return run
}

func TestRunRepository(t *testing.T) {
	t.Run("StartRun", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := startRun(t, repo, "pl")

		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence)
		}
		if run.Status != models.RunRunning {
			t.Errorf("expected status running, got %s", run.Status)
		}

		second := startRun(t, repo, "pl")
		if second.Sequence != 2 {
			t.Errorf("expected sequence 2, got %d", second.Sequence)
		}
	})

	t.Run("StartRun keeps given id", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := &models.RunRecord{ID: "run-1", PlaylistID: "pl"}

		if err := repo.StartRun(run); err != nil {
			t.Fatalf("failed to start run: %v", err)
		}

		got, err := repo.Get("run-1")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.PlaylistID != "pl" || got.FinishedAt != nil {
			t.Errorf("unexpected run: %+v", got)
		}
	})

	t.Run("StartRun requires playlist", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if err := repo.StartRun(&models.RunRecord{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("FinishRun", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := startRun(t, repo, "pl")

		finished := run.StartedAt.Add(90 * time.Second)
		run.PlaylistName = "Road Trip"
		run.Status = models.RunCompleted
		run.Resolved, run.Cached, run.Skipped, run.Failed = 5, 3, 1, 2
		run.FinishedAt = &finished

		if err := repo.FinishRun(run); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status != models.RunCompleted || got.PlaylistName != "Road Trip" {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.Resolved != 5 || got.Cached != 3 || got.Skipped != 1 || got.Failed != 2 {
			t.Errorf("unexpected counts: %+v", got)
		}
		if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
			t.Errorf("expected finished at %v, got %v", finished, got.FinishedAt)
		}
		if !got.StartedAt.Equal(run.StartedAt) {
			t.Errorf("expected started at %v, got %v", run.StartedAt, got.StartedAt)
		}
	})

	t.Run("FinishRun unknown run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		err := repo.FinishRun(&models.RunRecord{ID: "missing", Status: models.RunFailed})
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("missing"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if _, err := repo.GetBySequence(7); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("RecordTrack and Tracks", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := startRun(t, repo, "pl")

		records := []models.TrackRecord{
			{RunID: run.ID, Position: 1, Outcome: models.OutcomeSkipped},
			{RunID: run.ID, Position: 0, TrackID: "t1", Query: "Song Band audio", Outcome: models.OutcomeResolved, Cached: true},
			{RunID: run.ID, Position: 2, TrackID: "t2", Query: "Other audio", Outcome: models.OutcomeFailed, Reason: "download failed: 403"},
		}
		for _, rec := range records {
			if err := repo.RecordTrack(rec); err != nil {
				t.Fatalf("failed to record track: %v", err)
			}
		}

		got, err := repo.Tracks(run.ID)
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 records, got %d", len(got))
		}
		if got[0].TrackID != "t1" || !got[0].Cached || got[0].Outcome != models.OutcomeResolved {
			t.Errorf("unexpected first record: %+v", got[0])
		}
		if got[2].Reason != "download failed: 403" {
			t.Errorf("unexpected reason: %q", got[2].Reason)
		}
	})

	t.Run("RecordTrack requires run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		err := repo.RecordTrack(models.TrackRecord{RunID: "missing", Outcome: models.OutcomeResolved})
		if err == nil {
			t.Error("expected foreign key error")
		}
	})

	t.Run("RecordTrack duplicate position", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := startRun(t, repo, "pl")

		rec := models.TrackRecord{RunID: run.ID, Position: 0, Outcome: models.OutcomeResolved}
		if err := repo.RecordTrack(rec); err != nil {
			t.Fatalf("failed to record track: %v", err)
		}
		if err := repo.RecordTrack(rec); err == nil {
			t.Error("expected error for duplicate position")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		for range 3 {
			startRun(t, repo, "pl")
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Sequence != 3 || runs[1].Sequence != 2 {
			t.Errorf("expected newest first, got %d, %d", runs[0].Sequence, runs[1].Sequence)
		}

		all, _ := repo.List(0)
		if len(all) != 3 {
			t.Errorf("expected 3 runs without limit, got %d", len(all))
		}
	})

	t.Run("LastFailures", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		if failed, err := repo.LastFailures("pl"); err != nil || failed != nil {
			t.Errorf("expected no failures without runs, got %v %v", failed, err)
		}

		old := startRun(t, repo, "pl")
		repo.RecordTrack(models.TrackRecord{RunID: old.ID, Position: 0, TrackID: "a", Outcome: models.OutcomeFailed})
		old.Status = models.RunCompleted
		repo.FinishRun(old)

		latest := startRun(t, repo, "pl")
		repo.RecordTrack(models.TrackRecord{RunID: latest.ID, Position: 0, TrackID: "a", Outcome: models.OutcomeResolved})
		repo.RecordTrack(models.TrackRecord{RunID: latest.ID, Position: 1, TrackID: "b", Outcome: models.OutcomeFailed})
		latest.Status = models.RunCompleted
		repo.FinishRun(latest)

		aborted := startRun(t, repo, "pl")
		aborted.Status = models.RunFailed
		repo.FinishRun(aborted)

		failed, err := repo.LastFailures("pl")
		if err != nil {
			t.Fatalf("failed to get last failures: %v", err)
		}
		if len(failed) != 1 || failed[0].TrackID != "b" {
			t.Errorf("expected only b, got %+v", failed)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)
		var first *models.RunRecord
		for i := range 4 {
			run := startRun(t, repo, "pl")
			repo.RecordTrack(models.TrackRecord{RunID: run.ID, Position: 0, Outcome: models.OutcomeResolved})
			if i == 0 {
				first = run
			}
		}

		deleted, err := repo.Prune(2)
		if err != nil {
			t.Fatalf("failed to prune: %v", err)
		}
		if deleted != 2 {
			t.Errorf("expected 2 deleted, got %d", deleted)
		}

		var count int
		db.QueryRow("SELECT COUNT(*) FROM track_results").Scan(&count)
		if count != 2 {
			t.Errorf("expected track results to cascade, got %d rows", count)
		}
		if _, err := repo.Get(first.ID); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected oldest run pruned, got %v", err)
		}

		if _, err := repo.Prune(-1); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)
		db.Close()

		if err := repo.StartRun(&models.RunRecord{PlaylistID: "pl"}); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(0); err == nil {
			t.Error("expected error on closed database")
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}
