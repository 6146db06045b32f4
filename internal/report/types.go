// Package report renders optimizer iteration data into persisted forms:
// a chunked append-mode CSV event dump plus whole-document CSV, JSON,
// Markdown, Excel and PDF renderers of the per-iteration aggregate
// metrics, all behind one Generator interface.
package report

import "trafficsim/internal/optimizer"

// Options controls cosmetic report fields a caller may override; the
// zero value renders a usable report with generic defaults.
type Options struct {
	Title          string
	Author         string
	Description    string
	IncludeDropped bool
}

// Data is the input every Generator renders from: one optimizer run's
// reports, keyed by run for the benefit of callers persisting alongside
// internal/history rows.
type Data struct {
	RunID      string
	Options    *Options
	Iterations []optimizer.Report
}
