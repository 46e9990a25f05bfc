// Package ui styles terminal output of the playcast CLI with lipgloss.
//
// A single [Palette] backs the helpers used by the command layer: [Title] for section headers,
// [OK], [Warn] and [Err] for status lines, and [Outcome] to color per-track progress by its
// [models.Outcome]. Styles degrade to plain text when output is not a terminal.
package ui
