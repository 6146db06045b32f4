package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficsim/internal/audit"
	"trafficsim/internal/events"
	"trafficsim/internal/expected"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
	"trafficsim/internal/planner"
	"trafficsim/internal/router"
	"trafficsim/internal/simulator"
)

func zero() *int { z := 0; return &z }

// S3: grid size=5 (a 6x6 node grid, corners (0,0) and (5,5)), 20 agents all
// routed corner-to-corner, MAX_RUNS=20, p=0.5, alpha=1.0. Replanning must
// not worsen mean trip duration on average.
func TestS3GridEquilibriumTrendIsNonWorsening(t *testing.T) {
	n, err := network.Grid(network.GridOptions{Rows: 6, Cols: 6, EdgeLength: 50, FreeSpeed: 10, FlowCap: 0.25, Lanes: 1})
	require.NoError(t, err)

	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	plans := make(map[string]*plan.Plan, 20)
	for i := 0; i < 20; i++ {
		p := plan.New()
		p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0,0", Duration: zero()})
		p.AddTrip(&plan.Trip{Origin: "0,0", Destination: "5,5"})
		p.AddActivity(&plan.Activity{Type: plan.Work, Location: "5,5", Duration: nil})
		plans[agentID(i)] = p
	}

	r := router.New(n, tbl)
	pl := planner.New(n, r, plans, rand.New(rand.NewSource(7)))
	require.NoError(t, pl.Plan(context.Background()))

	log := events.NewLog()
	sim := simulator.New(n, log)

	opt := New(n, sim, pl, simulator.DefaultHorizon)
	_, reports, err := opt.Run(context.Background(), 20, 0.5, tbl)
	require.NoError(t, err)
	require.Len(t, reports, 21)

	first := reports[0].MeanTripDuration
	last := reports[len(reports)-1].MeanTripDuration
	assert.LessOrEqual(t, last, first)
}

func agentID(i int) string {
	return fmt.Sprintf("a%d", i)
}

// Property #8: every agent's completed log has an equal count of EnterLink
// and ExitLink events.
func TestConservationOfLinkEvents(t *testing.T) {
	n, err := network.Linear(network.LinearOptions{NumNodes: 4, EdgeLength: 50, FreeSpeed: 10, FlowCap: 0.25, Lanes: 1})
	require.NoError(t, err)

	p := plan.New()
	p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
	p.AddTrip(&plan.Trip{Origin: "0", Destination: "3", Route: []plan.RoutedEdge{
		{Edge: network.Edge{From: "0", To: "1"}, MinDuration: 5},
		{Edge: network.Edge{From: "1", To: "2"}, MinDuration: 5},
		{Edge: network.Edge{From: "2", To: "3"}, MinDuration: 5},
	}})
	hundred := 100
	p.AddActivity(&plan.Activity{Type: plan.Work, Location: "3", Duration: &hundred})

	log := events.NewLog()
	sim := simulator.New(n, log)
	sim.Set(map[string]*plan.Plan{"a1": p})
	sim.Run(0)

	enters, exits := 0, 0
	for _, rec := range log.Records() {
		switch rec.Instruction.Kind {
		case plan.EnterLink:
			enters++
		case plan.ExitLink:
			exits++
		}
	}
	assert.Equal(t, enters, exits)
	assert.Equal(t, 3, enters)
}

// The Optimizer logs one ActionSolve entry per iteration, and the Planner it
// drives logs one ActionReplan entry per agent actually re-routed.
func TestRunWithAuditRecordsSolveAndReplanEntries(t *testing.T) {
	n, err := network.Linear(network.LinearOptions{NumNodes: 3, EdgeLength: 50, FreeSpeed: 10, FlowCap: 0.25, Lanes: 1})
	require.NoError(t, err)

	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	p := plan.New()
	p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
	p.AddTrip(&plan.Trip{Origin: "0", Destination: "2"})
	p.AddActivity(&plan.Activity{Type: plan.Work, Location: "2", Duration: nil})

	r := router.New(n, tbl)
	var planBuf bytes.Buffer
	auditLog := audit.NewLogger(audit.NewWriterSink(&planBuf))
	pl := planner.New(n, r, map[string]*plan.Plan{"a1": p}, rand.New(rand.NewSource(3))).WithAudit(auditLog)
	require.NoError(t, pl.Plan(context.Background()))

	log := events.NewLog()
	sim := simulator.New(n, log)

	opt := New(n, sim, pl, simulator.DefaultHorizon).WithAudit(auditLog)
	_, _, err = opt.Run(context.Background(), 1, 1.0, tbl)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(planBuf.String()), "\n")
	var solveCount, replanCount int
	for _, line := range lines {
		var e audit.Entry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		switch e.Action {
		case audit.ActionSolve:
			solveCount++
		case audit.ActionReplan:
			replanCount++
		}
	}
	assert.Equal(t, 2, solveCount) // iteration 0 plus iteration 1
	assert.Equal(t, 2, replanCount) // Plan() call plus the Replan(p=1.0) inside Run
}
