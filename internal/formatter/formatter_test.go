package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/playcast/internal/models"
)

func sampleRun() (*models.RunRecord, []models.TrackRecord) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(65 * time.Second)

	run := &models.RunRecord{
		ID:           "run-1",
		Sequence:     7,
		PlaylistID:   "pl",
		PlaylistName: "Road Trip",
		Status:       models.RunCompleted,
		Resolved:     1,
		Cached:       1,
		Skipped:      1,
		Failed:       1,
		StartedAt:    started,
		FinishedAt:   &finished,
	}

	tracks := []models.TrackRecord{
		{RunID: "run-1", Position: 0, TrackID: "t1", Query: "Song Band audio", Outcome: models.OutcomeResolved, Cached: true},
		{RunID: "run-1", Position: 1, Outcome: models.OutcomeSkipped},
		{RunID: "run-1", Position: 2, TrackID: "t2", Query: "Other, Artist audio", Outcome: models.OutcomeFailed, Reason: "no search results"},
	}
	return run, tracks
}

func TestExporters(t *testing.T) {
	t.Run("RunToCSV", func(t *testing.T) {
		_, tracks := sampleRun()

		data, err := RunToCSV(tracks)
		if err != nil {
			t.Fatalf("RunToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Position,TrackID,Outcome,Cached,Query,Reason\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,t1,resolved,true,Song Band audio,") {
			t.Errorf("CSV missing t1 row, got: %s", output)
		}
		if !strings.Contains(output, `3,t2,failed,false,"Other, Artist audio",no search results`) {
			t.Errorf("CSV should quote fields with commas, got: %s", output)
		}
	})

	t.Run("RunToMarkdown", func(t *testing.T) {
		run, tracks := sampleRun()

		data, err := RunToMarkdown(run, tracks)
		if err != nil {
			t.Fatalf("RunToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Run #7: Road Trip",
			"**Status**: completed",
			"**Duration**: 1m05s",
			"| 1 | 1 | 1 | 1 |",
			"1. ✓ `t1` Song Band audio",
			"2. - skipped",
			"3. ✗ `t2` Other, Artist audio: no search results",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "**Error**") {
			t.Error("Markdown should omit empty error")
		}
	})

	t.Run("RunToText", func(t *testing.T) {
		run, tracks := sampleRun()
		run.Status = models.RunFailed
		run.Error = "feed write failed"

		data, err := RunToText(run, tracks)
		if err != nil {
			t.Fatalf("RunToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Run #7: Road Trip") {
			t.Errorf("Text missing title, got: %s", output)
		}
		if !strings.Contains(output, "Error: feed write failed") {
			t.Errorf("Text missing error, got: %s", output)
		}
		if !strings.Contains(output, "1. [resolved (cached)] t1") {
			t.Errorf("Text missing cached label, got: %s", output)
		}
		if !strings.Contains(output, "3. [failed] t2: no search results") {
			t.Errorf("Text missing failure reason, got: %s", output)
		}
	})

	t.Run("Export", func(t *testing.T) {
		run, tracks := sampleRun()

		tt := []struct {
			format string
			want   string
		}{
			{format: "csv", want: "Position,TrackID"},
			{format: "markdown", want: "# Run #7"},
			{format: "md", want: "# Run #7"},
			{format: "txt", want: "Run #7: Road Trip"},
			{format: "table", want: "Outcome"},
			{format: "", want: "Outcome"},
		}

		for _, tc := range tt {
			t.Run(tc.format, func(t *testing.T) {
				data, err := Export(tc.format, run, tracks)
				if err != nil {
					t.Fatalf("Export failed: %v", err)
				}
				if !strings.Contains(string(data), tc.want) {
					t.Errorf("expected %q in output, got:\n%s", tc.want, data)
				}
			})
		}

		if _, err := Export("xml", run, tracks); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("RunsTable", func(t *testing.T) {
		run, _ := sampleRun()
		unfinished := &models.RunRecord{Sequence: 8, PlaylistID: "pl-raw", Status: models.RunRunning, StartedAt: run.StartedAt}

		output := RunsTable([]*models.RunRecord{unfinished, run})

		for _, want := range []string{"Status", "Road Trip", "pl-raw", "completed", "running", "1m05s"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
		if strings.Index(output, "pl-raw") > strings.Index(output, "Road Trip") {
			t.Error("expected rows in the given order")
		}
	})

	t.Run("TracksTable", func(t *testing.T) {
		_, tracks := sampleRun()

		output := TracksTable(tracks)

		for _, want := range []string{"Pos", "t1", "resolved (cached)", "skipped", "no search results"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
	})
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tt := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{name: "seconds", elapsed: 42 * time.Second, want: "42s"},
		{name: "minutes", elapsed: 3*time.Minute + 7*time.Second, want: "3m07s"},
		{name: "rounds", elapsed: 59*time.Second + 600*time.Millisecond, want: "1m00s"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			end := start.Add(tc.elapsed)
			got := FormatDuration(&models.RunRecord{StartedAt: start, FinishedAt: &end})
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}

	if got := FormatDuration(&models.RunRecord{StartedAt: start}); got != "-" {
		t.Errorf("expected '-' for unfinished run, got %s", got)
	}
}
