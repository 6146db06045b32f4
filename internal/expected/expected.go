// Package expected maintains the smoothed per-edge expected travel-duration
// table the router uses as its edge weights, updated each iteration from
// the previous run's observed durations.
package expected

import (
	"trafficsim/internal/network"
	"trafficsim/pkg/apperror"
)

// Table holds one expected duration per edge, exponentially smoothed
// across iterations.
type Table struct {
	alpha     float64
	durations map[network.Edge]float64
}

// New builds a Table seeded with net's minimum (free-flow) durations.
// alpha must be in (0, 1]; 1.0 means each update replaces the prior value
// outright with the latest observation.
func New(net *network.Network, alpha float64) (*Table, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, apperror.New(apperror.CodeInvalidAlpha, "alpha must be within (0, 1]").WithDetails("alpha", alpha)
	}
	durations := make(map[network.Edge]float64)
	for e, d := range net.MinimumDurations() {
		durations[e] = float64(d)
	}
	return &Table{alpha: alpha, durations: durations}, nil
}

// Get returns the current expected duration for edge e, or ok=false if the
// edge is unknown to this table.
func (t *Table) Get(e network.Edge) (float64, bool) {
	d, ok := t.durations[e]
	return d, ok
}

// Update applies the exponential smoothing rule for a single observation:
// d_new = (1-alpha)*d_old + alpha*d_obs.
func (t *Table) Update(e network.Edge, observed float64) {
	old, ok := t.durations[e]
	if !ok {
		t.durations[e] = observed
		return
	}
	t.durations[e] = (1-t.alpha)*old + t.alpha*observed
}

// UpdateAll applies Update for every edge with a non-null mean observation;
// edges absent from observed (never traversed in the last run) are left
// unchanged.
func (t *Table) UpdateAll(observed map[network.Edge]float64) {
	for e, d := range observed {
		t.Update(e, d)
	}
}

// Snapshot returns a copy of the current table, safe for the router to
// retain across its own recomputation.
func (t *Table) Snapshot() map[network.Edge]float64 {
	out := make(map[network.Edge]float64, len(t.durations))
	for e, d := range t.durations {
		out[e] = d
	}
	return out
}
