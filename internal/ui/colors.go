package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/playcast/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func Title(s string) string { return styles.title.Render(s) }
func OK(s string) string    { return styles.ok.Render(s) }
func Err(s string) string   { return styles.err.Render(s) }
func Warn(s string) string  { return styles.warn.Render(s) }
func Help(s string) string  { return styles.help.Render(s) }

// Outcome colors a per-track status line by its outcome.
func Outcome(outcome models.Outcome, cached bool, line string) string {
	switch {
	case outcome == models.OutcomeFailed:
		return Err(line)
	case outcome == models.OutcomeSkipped:
		return Warn(line)
	case cached:
		return Help(line)
	default:
		return OK(line)
	}
}

// Counts renders a run summary, coloring only the non-zero problem counts.
func Counts(resolved, cached, skipped, failed int) string {
	s := fmt.Sprintf("%s resolved (%d cached)", OK(fmt.Sprint(resolved)), cached)
	skip := fmt.Sprint(skipped)
	if skipped > 0 {
		skip = Warn(skip)
	}
	fail := fmt.Sprint(failed)
	if failed > 0 {
		fail = Err(fail)
	}
	return fmt.Sprintf("%s, %s skipped, %s failed", s, skip, fail)
}
