package reducers

import (
	"trafficsim/internal/events"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
)

// agentBuild accumulates the in-progress plan reconstruction for one agent
// as its events are walked in order.
type agentBuild struct {
	p *plan.Plan

	prevActivityLoc    network.NodeID
	haveClosedActivity bool
	pendingEdges       []network.Edge

	activityOpen      bool
	activityEnterTime int
	activityLoc       network.NodeID
	activityType      plan.ActivityType
}

// EventsToPlans reconstructs a Plan per agent from the log alone: SOS opens
// a plan, EnterActivity/ExitActivity pairs become Activities with duration
// = exit_time - enter_time, EnterLink/ExitLink pairs between activities
// form the routed edges of the next Trip whose origin/destination are the
// surrounding activities' locations, and EOS closes the plan. Agents whose
// log never reaches EOS (horizon-truncated) are omitted; a dangling
// EnterLink with no matching ExitLink is tolerated since only the edge
// identity (not its timing) is needed to reconstruct the route.
func EventsToPlans(net *network.Network, records []events.Record) map[string]*plan.Plan {
	builds := make(map[string]*agentBuild)
	result := make(map[string]*plan.Plan)

	for _, r := range records {
		b, ok := builds[r.AgentID]
		if !ok {
			if r.Instruction.Kind != plan.SOS {
				continue
			}
			builds[r.AgentID] = &agentBuild{p: plan.New()}
			continue
		}

		switch r.Instruction.Kind {
		case plan.EnterActivity:
			if b.haveClosedActivity {
				b.p.AddTrip(&plan.Trip{
					Origin:      b.prevActivityLoc,
					Destination: r.Instruction.Node,
					Route:       routedEdgesFor(net, b.pendingEdges),
				})
			}
			b.pendingEdges = nil
			b.activityOpen = true
			b.activityEnterTime = r.Time
			b.activityLoc = r.Instruction.Node
			b.activityType = r.Instruction.Aux

		case plan.ExitActivity:
			if !b.activityOpen {
				continue
			}
			duration := r.Time - b.activityEnterTime
			b.p.AddActivity(&plan.Activity{
				Type:     b.activityType,
				Location: b.activityLoc,
				Duration: &duration,
			})
			b.prevActivityLoc = b.activityLoc
			b.haveClosedActivity = true
			b.activityOpen = false

		case plan.EnterLink:
			b.pendingEdges = append(b.pendingEdges, r.Instruction.Edge)

		case plan.EOS:
			result[r.AgentID] = b.p
			delete(builds, r.AgentID)
		}
	}

	return result
}

func routedEdgesFor(net *network.Network, edges []network.Edge) []plan.RoutedEdge {
	if len(edges) == 0 {
		return nil
	}
	out := make([]plan.RoutedEdge, 0, len(edges))
	for _, e := range edges {
		minDuration := 0
		if attrs, ok := net.EdgeAttrs(e.From, e.To); ok {
			minDuration = attrs.MinDuration
		}
		out = append(out, plan.RoutedEdge{Edge: e, MinDuration: minDuration})
	}
	return out
}
