// Package optimizer drives the iterative day-to-day replanning loop:
// simulate, fold the resulting log back into plans and expected durations,
// replan a random fraction of agents, and simulate again.
package optimizer

import (
	"context"
	"fmt"

	"trafficsim/internal/audit"
	"trafficsim/internal/events"
	"trafficsim/internal/expected"
	"trafficsim/internal/network"
	"trafficsim/internal/planner"
	"trafficsim/internal/reducers"
	"trafficsim/internal/simulator"
	"trafficsim/pkg/logger"
)

// Report summarizes one iteration's outcome, the aggregate metrics the
// reducers expose plus the iteration number they belong to.
type Report struct {
	Iteration         int
	AgentCount        int
	MeanTripDuration  float64
	MeanTripLength    float64
	MeanLinkDuration  float64
	DroppedAgentCount int
}

// Optimizer owns one simulator instance and the planner that feeds it,
// running the simulate/update/replan cycle over a fixed network.
type Optimizer struct {
	net     *network.Network
	sim     *simulator.Simulator
	planner *planner.Planner
	horizon int
	audit   *audit.Logger

	reports []Report
}

// New builds an Optimizer over net, sim and pl. sim and pl must already
// share net; pl's initial plan set is used for the first run.
func New(net *network.Network, sim *simulator.Simulator, pl *planner.Planner, horizon int) *Optimizer {
	if horizon <= 0 {
		horizon = simulator.DefaultHorizon
	}
	return &Optimizer{net: net, sim: sim, planner: pl, horizon: horizon}
}

// WithAudit attaches an audit.Logger that records one ActionSolve entry per
// Run iteration. Returns o for chaining.
func (o *Optimizer) WithAudit(l *audit.Logger) *Optimizer {
	o.audit = l
	return o
}

// Run performs the initial simulation, then iterates up to maxRuns times:
// update the planner from the previous log, refresh expected durations,
// replan a fraction p of agents, and resimulate. Returns the final event
// log and every iteration's Report.
func (o *Optimizer) Run(ctx context.Context, maxRuns int, p float64, table *expected.Table) (*events.Log, []Report, error) {
	o.sim.Set(o.planner.Plans())
	o.sim.Run(o.horizon)
	log := o.sim.Log()

	o.reports = append(o.reports, o.report(0, log))
	logger.Info("optimizer iteration complete", "iteration", 0, "p", p)
	o.logSolve(0, 0, nil)

	for i := 1; i <= maxRuns; i++ {
		select {
		case <-ctx.Done():
			return log, o.reports, ctx.Err()
		default:
		}

		before := len(o.planner.Plans())
		o.planner.Update(log)
		after := len(o.planner.Plans())
		dropped := before - after
		if dropped > 0 {
			logger.Warn("agents truncated by horizon exhaustion dropped from plan set",
				"iteration", i, "dropped", dropped)
		}

		observed := reducers.ExpectedLinkDurations(log.Records())
		table.UpdateAll(observed)

		if err := o.planner.Replan(ctx, p); err != nil {
			o.logSolve(i, dropped, err)
			return log, o.reports, fmt.Errorf("iteration %d: replan: %w", i, err)
		}

		o.sim.Set(o.planner.Plans())
		o.sim.Run(o.horizon)
		log = o.sim.Log()

		rep := o.report(i, log)
		rep.DroppedAgentCount = dropped
		o.reports = append(o.reports, rep)
		logger.Info("optimizer iteration complete",
			"iteration", i,
			"mean_trip_duration", rep.MeanTripDuration,
			"mean_trip_length", rep.MeanTripLength,
			"mean_link_duration", rep.MeanLinkDuration,
		)
		o.logSolve(i, dropped, nil)
	}

	return log, o.reports, nil
}

// logSolve records an ActionSolve audit entry if an audit.Logger is
// attached; it is a no-op otherwise.
func (o *Optimizer) logSolve(iteration, dropped int, runErr error) {
	if o.audit == nil {
		return
	}
	if err := o.audit.LogSolve(iteration, dropped, runErr); err != nil {
		logger.Warn("audit log write failed", "iteration", iteration, "error", err)
	}
}

// Reports returns every iteration's Report collected so far, in order.
func (o *Optimizer) Reports() []Report {
	return o.reports
}

func (o *Optimizer) report(iteration int, log *events.Log) Report {
	records := log.Records()

	durations := reducers.TripDurations(records)
	lengths := reducers.TripLengths(o.net, records)
	linkDurations := reducers.ExpectedLinkDurations(records)

	return Report{
		Iteration:        iteration,
		AgentCount:       len(o.planner.Plans()),
		MeanTripDuration: mean(intsToFloats(durations)),
		MeanTripLength:   mean(lengths),
		MeanLinkDuration: meanMapValues(linkDurations),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanMapValues(m map[network.Edge]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
