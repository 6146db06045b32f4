// Package reducers implements the stateless single-pass statistics and
// plan-reconstruction functions that turn a simulation's event log into
// the inputs the next iteration needs.
package reducers

import (
	"trafficsim/internal/events"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
)

// TripDurations returns the elapsed time between each ExitActivity and the
// next EnterActivity, per agent, across all agents in the log.
func TripDurations(records []events.Record) []int {
	pending := make(map[string]int)
	var durations []int

	for _, r := range records {
		switch r.Instruction.Kind {
		case plan.ExitActivity:
			pending[r.AgentID] = r.Time
		case plan.EnterActivity:
			if start, ok := pending[r.AgentID]; ok {
				durations = append(durations, r.Time-start)
				delete(pending, r.AgentID)
			}
		}
	}
	return durations
}

// TripLengths returns, per agent trip, the sum of edge lengths traversed
// between each ExitActivity and the next EnterActivity.
func TripLengths(net *network.Network, records []events.Record) []float64 {
	accum := make(map[string]float64)
	tracking := make(map[string]bool)
	var lengths []float64

	for _, r := range records {
		switch r.Instruction.Kind {
		case plan.ExitActivity:
			accum[r.AgentID] = 0
			tracking[r.AgentID] = true
		case plan.EnterLink:
			if tracking[r.AgentID] {
				if attrs, ok := net.EdgeAttrs(r.Instruction.Edge.From, r.Instruction.Edge.To); ok {
					accum[r.AgentID] += attrs.Length
				}
			}
		case plan.EnterActivity:
			if tracking[r.AgentID] {
				lengths = append(lengths, accum[r.AgentID])
				delete(accum, r.AgentID)
				delete(tracking, r.AgentID)
			}
		}
	}
	return lengths
}

// ExpectedLinkDurations returns, per edge, the mean observed
// exit_time-enter_time across every traversal in the log. An edge never
// traversed is absent from the result (the "null" case).
func ExpectedLinkDurations(records []events.Record) map[network.Edge]float64 {
	pending := make(map[string]struct {
		edge  network.Edge
		start int
	})
	durations := make(map[network.Edge][]int)

	for _, r := range records {
		switch r.Instruction.Kind {
		case plan.EnterLink:
			pending[r.AgentID] = struct {
				edge  network.Edge
				start int
			}{edge: r.Instruction.Edge, start: r.Time}
		case plan.ExitLink:
			p, ok := pending[r.AgentID]
			if !ok || p.edge != r.Instruction.Edge {
				continue // malformed: ExitLink with no matching EnterLink, skip
			}
			durations[r.Instruction.Edge] = append(durations[r.Instruction.Edge], r.Time-p.start)
			delete(pending, r.AgentID)
		}
	}

	means := make(map[network.Edge]float64, len(durations))
	for edge, ds := range durations {
		if len(ds) == 0 {
			continue
		}
		sum := 0
		for _, d := range ds {
			sum += d
		}
		means[edge] = float64(sum) / float64(len(ds))
	}
	return means
}

// AvLinkSpeeds returns, per edge, length / mean_traversal_time, derived
// from the same per-traversal durations as ExpectedLinkDurations.
func AvLinkSpeeds(net *network.Network, records []events.Record) map[network.Edge]float64 {
	durations := ExpectedLinkDurations(records)
	speeds := make(map[network.Edge]float64, len(durations))
	for edge, meanDuration := range durations {
		if meanDuration <= 0 {
			continue
		}
		attrs, ok := net.EdgeAttrs(edge.From, edge.To)
		if !ok {
			continue
		}
		speeds[edge] = attrs.Length / meanDuration
	}
	return speeds
}

// AgentRoutes returns, per agent, the sequence of edge sequences traversed
// between consecutive activity bookends (one entry per completed trip).
func AgentRoutes(records []events.Record) map[string][][]network.Edge {
	current := make(map[string][]network.Edge)
	tracking := make(map[string]bool)
	routes := make(map[string][][]network.Edge)

	for _, r := range records {
		switch r.Instruction.Kind {
		case plan.ExitActivity:
			current[r.AgentID] = nil
			tracking[r.AgentID] = true
		case plan.EnterLink:
			if tracking[r.AgentID] {
				current[r.AgentID] = append(current[r.AgentID], r.Instruction.Edge)
			}
		case plan.EnterActivity:
			if tracking[r.AgentID] {
				routes[r.AgentID] = append(routes[r.AgentID], current[r.AgentID])
				delete(current, r.AgentID)
				delete(tracking, r.AgentID)
			}
		}
	}
	return routes
}
