// package formatter renders sync ledger data as tables, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/playcast/internal/models"
)

// Format names accepted by [Export].
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// FormatDuration formats the elapsed time of a run as "1m05s"; unfinished runs render as "-".
func FormatDuration(run *models.RunRecord) string {
	if run.FinishedAt == nil {
		return "-"
	}
	d := run.FinishedAt.Sub(run.StartedAt).Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RunsTable renders a summary row per run.
func RunsTable(runs []*models.RunRecord) string {
	t := newTable("#", "Started", "Playlist", "Status", "Resolved", "Cached", "Skipped", "Failed", "Took")
	for _, run := range runs {
		name := run.PlaylistName
		if name == "" {
			name = run.PlaylistID
		}
		t.Row(
			strconv.Itoa(run.Sequence),
			run.StartedAt.Local().Format(timeLayout),
			name,
			string(run.Status),
			strconv.Itoa(run.Resolved),
			strconv.Itoa(run.Cached),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			FormatDuration(run),
		)
	}
	return t.String()
}

// TracksTable renders the per-track outcomes of a run.
func TracksTable(tracks []models.TrackRecord) string {
	t := newTable("Pos", "Track", "Outcome", "Query", "Reason")
	for _, rec := range tracks {
		t.Row(strconv.Itoa(rec.Position+1), rec.TrackID, outcomeLabel(rec), rec.Query, rec.Reason)
	}
	return t.String()
}

func outcomeLabel(rec models.TrackRecord) string {
	if rec.Cached {
		return rec.Outcome.String() + " (cached)"
	}
	return rec.Outcome.String()
}

// RunToCSV converts a run's track outcomes to CSV with columns: Position, TrackID, Outcome, Cached, Query, Reason
func RunToCSV(tracks []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "TrackID", "Outcome", "Cached", "Query", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range tracks {
		record := []string{
			strconv.Itoa(rec.Position + 1),
			rec.TrackID,
			rec.Outcome.String(),
			strconv.FormatBool(rec.Cached),
			rec.Query,
			rec.Reason,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunToMarkdown converts a run and its track outcomes to a Markdown report
func RunToMarkdown(run *models.RunRecord, tracks []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Run #%d: %s\n\n", run.Sequence, runTitle(run))
	fmt.Fprintf(&buf, "**Status**: %s\n", run.Status)
	fmt.Fprintf(&buf, "**Started**: %s\n", run.StartedAt.Local().Format(timeLayout))
	fmt.Fprintf(&buf, "**Duration**: %s\n", FormatDuration(run))
	if run.Error != "" {
		fmt.Fprintf(&buf, "**Error**: %s\n", run.Error)
	}
	fmt.Fprintf(&buf, "\n| Resolved | Cached | Skipped | Failed |\n|---|---|---|---|\n| %d | %d | %d | %d |\n\n",
		run.Resolved, run.Cached, run.Skipped, run.Failed)

	buf.WriteString("## Tracks\n\n")
	for _, rec := range tracks {
		switch rec.Outcome {
		case models.OutcomeFailed:
			fmt.Fprintf(&buf, "%d. ✗ `%s` %s: %s\n", rec.Position+1, rec.TrackID, rec.Query, rec.Reason)
		case models.OutcomeSkipped:
			fmt.Fprintf(&buf, "%d. - skipped %s\n", rec.Position+1, rec.TrackID)
		default:
			fmt.Fprintf(&buf, "%d. ✓ `%s` %s\n", rec.Position+1, rec.TrackID, rec.Query)
		}
	}

	return buf.Bytes(), nil
}

// RunToText converts a run and its track outcomes to plain text
func RunToText(run *models.RunRecord, tracks []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run #%d: %s\n", run.Sequence, runTitle(run))
	fmt.Fprintf(&buf, "Status: %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(&buf, "Error: %s\n", run.Error)
	}
	fmt.Fprintf(&buf, "Resolved: %d (cached %d), Skipped: %d, Failed: %d\n\n", run.Resolved, run.Cached, run.Skipped, run.Failed)

	for _, rec := range tracks {
		line := fmt.Sprintf("%d. [%s] %s", rec.Position+1, outcomeLabel(rec), rec.TrackID)
		if rec.Reason != "" {
			line += ": " + rec.Reason
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// Export renders a run in the named format.
func Export(format string, run *models.RunRecord, tracks []models.TrackRecord) ([]byte, error) {
	switch format {
	case FormatTable, "":
		return []byte(TracksTable(tracks) + "\n"), nil
	case FormatCSV:
		return RunToCSV(tracks)
	case FormatMarkdown, "md":
		return RunToMarkdown(run, tracks)
	case FormatText, "text":
		return RunToText(run, tracks)
	default:
		return nil, fmt.Errorf("unsupported format %q (use table, csv, markdown or txt)", format)
	}
}

func runTitle(run *models.RunRecord) string {
	if run.PlaylistName != "" {
		return run.PlaylistName
	}
	return run.PlaylistID
}
