// Package planner walks each agent's Plan under a notional clock, routing
// Trips against the current expected-duration table and filling in any
// undefined final-activity duration.
package planner

import (
	"context"
	"fmt"
	"math/rand"

	"trafficsim/internal/audit"
	"trafficsim/internal/events"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
	"trafficsim/internal/reducers"
	"trafficsim/internal/router"
	"trafficsim/pkg/apperror"
	"trafficsim/pkg/logger"
)

// DefaultHorizon is the notional-clock ceiling used to fill an undefined
// final-activity duration, matching the simulator's default step cap.
const DefaultHorizon = 86400

// Planner holds the mutable plan set being iterated on and routes Trips
// through a Router as it walks each agent's notional clock.
type Planner struct {
	plans   map[string]*plan.Plan
	router  *router.Router
	net     *network.Network
	horizon int
	rng     *rand.Rand
	audit   *audit.Logger
	calls   int
}

// New builds a Planner over an initial plan set.
func New(net *network.Network, r *router.Router, plans map[string]*plan.Plan, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Planner{plans: plans, router: r, net: net, horizon: DefaultHorizon, rng: rng}
}

// WithAudit attaches an audit.Logger that records one ActionReplan entry
// per agent actually re-routed. Returns p for chaining.
func (p *Planner) WithAudit(l *audit.Logger) *Planner {
	p.audit = l
	return p
}

// Plans returns the current plan set.
func (p *Planner) Plans() map[string]*plan.Plan {
	return p.plans
}

// Update replaces the plan set by reconstructing it from the prior
// iteration's event log, the feedback channel each iteration routes on top
// of what the previous iteration actually realized.
func (p *Planner) Update(log *events.Log) {
	p.plans = reducers.EventsToPlans(p.net, log.Records())
}

// Plan performs the initial planning pass, routing every agent
// unconditionally (p = 1.0).
func (p *Planner) Plan(ctx context.Context) error {
	return p.Replan(ctx, 1.0)
}

// Replan walks each agent's plan under a notional clock with independent
// probability prob of actually re-routing that agent; skipped agents keep
// their previously computed routes and durations untouched.
func (p *Planner) Replan(ctx context.Context, prob float64) error {
	if prob < 0 || prob > 1 {
		return apperror.ErrInvalidProbability.WithDetails("p", prob)
	}

	iteration := p.calls
	p.calls++

	skipped := 0
	for agentID, pl := range p.plans {
		if p.rng.Float64() > prob {
			skipped++
			continue
		}
		if err := p.walk(ctx, agentID, iteration, pl); err != nil {
			return fmt.Errorf("replanning agent %s: %w", agentID, err)
		}
	}
	if skipped > 0 {
		logger.Debug("replan skipped agents below probability threshold", "skipped", skipped, "p", prob)
	}
	return nil
}

// walk advances the notional clock through pl's components in order,
// routing each Trip and filling any undefined final-activity duration.
func (p *Planner) walk(ctx context.Context, agentID string, iteration int, pl *plan.Plan) error {
	clock := 0
	routed := false
	var oldExpected, newExpected float64
	for _, c := range pl.Components {
		switch v := c.(type) {
		case *plan.Activity:
			if v.Duration != nil {
				clock += *v.Duration
				continue
			}
			remaining := p.horizon - clock
			if remaining < 0 {
				return apperror.ErrHorizonExceeded.WithDetails("clock", clock).WithDetails("horizon", p.horizon)
			}
			v.Duration = &remaining
			clock += remaining
		case *plan.Trip:
			oldExpected += float64(v.ExpectedDuration)
			res, err := p.router.ShortestPath(ctx, v.Origin, v.Destination)
			if err != nil {
				return err
			}
			v.Route = res.Route
			v.ExpectedDuration = int(res.ExpectedDuration)
			clock += v.ExpectedDuration
			newExpected += res.ExpectedDuration
			routed = true
		}
	}
	if routed && p.audit != nil {
		if err := p.audit.LogReplan(agentID, iteration, oldExpected, newExpected); err != nil {
			logger.Warn("audit log write failed", "agent", agentID, "error", err)
		}
	}
	return nil
}
