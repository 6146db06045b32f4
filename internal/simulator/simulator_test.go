package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficsim/internal/events"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
)

func linearNet(t *testing.T, numNodes int, length, freeSpeed, flowCap float64, lanes int) *network.Network {
	t.Helper()
	n, err := network.Linear(network.LinearOptions{
		NumNodes: numNodes, EdgeLength: length, FreeSpeed: freeSpeed, FlowCap: flowCap, Lanes: lanes,
	})
	require.NoError(t, err)
	return n
}

func routeFor(t *testing.T, n *network.Network, nodes []network.NodeID) []plan.RoutedEdge {
	t.Helper()
	out := make([]plan.RoutedEdge, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		e := network.Edge{From: nodes[i-1], To: nodes[i]}
		attrs, ok := n.EdgeAttrs(e.From, e.To)
		require.True(t, ok)
		out = append(out, plan.RoutedEdge{Edge: e, MinDuration: attrs.MinDuration})
	}
	return out
}

func zero() *int { z := 0; return &z }

// S1: linear network size=3, length=50, freespeed=10, flow_capacity=0.25,
// lanes=1. One agent home->work across 3 edges. 3 EnterLink/ExitLink
// events; trip duration exactly 15s.
func TestS1LinearOneAgent(t *testing.T) {
	n := linearNet(t, 4, 50, 10, 0.25, 1)
	p := plan.New()
	p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
	p.AddTrip(&plan.Trip{Origin: "0", Destination: "3", Route: routeFor(t, n, []network.NodeID{"0", "1", "2", "3"})})
	p.AddActivity(&plan.Activity{Type: plan.Work, Location: "3", Duration: zero()})

	log := events.NewLog()
	sim := New(n, log)
	sim.Set(map[string]*plan.Plan{"a1": p})
	sim.Run(0)

	var enters, exits int
	var firstEnter, lastExit int
	for _, r := range log.Records() {
		switch r.Instruction.Kind {
		case plan.EnterLink:
			enters++
			if enters == 1 {
				firstEnter = r.Time
			}
		case plan.ExitLink:
			exits++
			lastExit = r.Time
		}
	}
	assert.Equal(t, 3, enters)
	assert.Equal(t, 3, exits)
	assert.Equal(t, 15, lastExit-firstEnter)
}

// S2: two agents with identical plans departing at t=0; headway=4s means
// the second agent's ExitLink events trail the first's by at least 4s.
func TestS2Headway(t *testing.T) {
	n := linearNet(t, 4, 50, 10, 0.25, 1)
	mkPlan := func() *plan.Plan {
		p := plan.New()
		p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
		p.AddTrip(&plan.Trip{Origin: "0", Destination: "3", Route: routeFor(t, n, []network.NodeID{"0", "1", "2", "3"})})
		p.AddActivity(&plan.Activity{Type: plan.Work, Location: "3", Duration: zero()})
		return p
	}

	log := events.NewLog()
	sim := New(n, log)
	sim.Set(map[string]*plan.Plan{"a1": mkPlan(), "a2": mkPlan()})
	sim.Run(0)

	exitTimes := map[network.Edge][]int{}
	for _, r := range log.Records() {
		if r.Instruction.Kind == plan.ExitLink {
			exitTimes[r.Instruction.Edge] = append(exitTimes[r.Instruction.Edge], r.Time)
		}
	}
	for edge, times := range exitTimes {
		require.Len(t, times, 2, "edge %v", edge)
		assert.GreaterOrEqual(t, times[1]-times[0], 4)
	}
}

// S4: storage block. Linear network with a single edge whose length equals
// one VehicleSize; the second of two agents departing at t=0 cannot enter
// until the first exits.
func TestS4StorageBlock(t *testing.T) {
	n := linearNet(t, 2, VehicleSize, 1, 1, 1)
	mkPlan := func() *plan.Plan {
		p := plan.New()
		p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
		p.AddTrip(&plan.Trip{Origin: "0", Destination: "1", Route: routeFor(t, n, []network.NodeID{"0", "1"})})
		p.AddActivity(&plan.Activity{Type: plan.Work, Location: "1", Duration: zero()})
		return p
	}

	log := events.NewLog()
	sim := New(n, log)
	sim.Set(map[string]*plan.Plan{"a1": mkPlan(), "a2": mkPlan()})
	sim.Run(0)

	var enterTimes, exitTimes []int
	for _, r := range log.Records() {
		if r.Instruction.Kind == plan.EnterLink {
			enterTimes = append(enterTimes, r.Time)
		}
		if r.Instruction.Kind == plan.ExitLink {
			exitTimes = append(exitTimes, r.Time)
		}
	}
	require.Len(t, enterTimes, 2)
	require.Len(t, exitTimes, 2)
	assert.GreaterOrEqual(t, enterTimes[1], exitTimes[0])
}

// S6: trip with origin == destination produces no link events but the
// surrounding activity transitions still appear in the log.
func TestS6EmptyRoute(t *testing.T) {
	n := linearNet(t, 2, 50, 10, 0.25, 1)
	p := plan.New()
	p.AddActivity(&plan.Activity{Type: plan.Home, Location: "0", Duration: zero()})
	p.AddTrip(&plan.Trip{Origin: "0", Destination: "0", Route: nil})
	p.AddActivity(&plan.Activity{Type: plan.Work, Location: "0", Duration: zero()})

	log := events.NewLog()
	sim := New(n, log)
	sim.Set(map[string]*plan.Plan{"a1": p})
	sim.Run(0)

	var sawExitActivity, sawEnterActivity int
	for _, r := range log.Records() {
		assert.NotEqual(t, plan.EnterLink, r.Instruction.Kind)
		assert.NotEqual(t, plan.ExitLink, r.Instruction.Kind)
		if r.Instruction.Kind == plan.ExitActivity {
			sawExitActivity++
		}
		if r.Instruction.Kind == plan.EnterActivity {
			sawEnterActivity++
		}
	}
	assert.Equal(t, 2, sawEnterActivity)
	assert.Equal(t, 2, sawExitActivity)
}
