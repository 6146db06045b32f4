// Package plan models an agent's day: an alternating sequence of
// activities and car trips, and the flattened instruction stream the
// simulator steps through.
package plan

import "trafficsim/internal/network"

// ActivityType distinguishes the purpose of a stay, matching the plans
// XML's "h" (home) / "w" (work) activity codes.
type ActivityType string

const (
	Home ActivityType = "h"
	Work ActivityType = "w"
)

// InstructionKind is the tag of the Instruction closed variant.
type InstructionKind int

const (
	SOS InstructionKind = iota
	EnterActivity
	ExitActivity
	EnterLink
	ExitLink
	EOS
)

func (k InstructionKind) String() string {
	switch k {
	case SOS:
		return "SOS"
	case EnterActivity:
		return "EnterActivity"
	case ExitActivity:
		return "ExitActivity"
	case EnterLink:
		return "EnterLink"
	case ExitLink:
		return "ExitLink"
	case EOS:
		return "EOS"
	default:
		return "unknown"
	}
}

// Instruction is the 4-tuple (kind, aux, asset, min_duration) emitted to the
// event log: aux is the activity type for activity instructions, Node
// is the asset for activity instructions, Edge is the asset for link
// instructions, and MinDuration is the dwell the instruction imposes before
// the agent may be rescheduled.
type Instruction struct {
	Kind        InstructionKind
	Aux         ActivityType
	Node        network.NodeID
	Edge        network.Edge
	MinDuration int
}

// component is the closed tagged-union of plan elements: Activity and Trip
// are the only variants, dispatched through instructions() rather than
// runtime type inheritance.
type component interface {
	instructions() []Instruction
}

// Activity is a stay at a node for a given duration. Duration is nil only
// for the final activity of a plan, whose length is set by the planner
// from the simulation horizon.
type Activity struct {
	Type     ActivityType
	Location network.NodeID
	Duration *int
}

func (a *Activity) instructions() []Instruction {
	dur := 0
	if a.Duration != nil {
		dur = *a.Duration
	}
	return []Instruction{
		{Kind: EnterActivity, Aux: a.Type, Node: a.Location, MinDuration: 0},
		{Kind: ExitActivity, Aux: a.Type, Node: a.Location, MinDuration: dur},
	}
}

// RoutedEdge is one hop of a planned route: the edge itself plus the
// free-flow minimum duration the simulator enforces when exiting it.
type RoutedEdge struct {
	Edge        network.Edge
	MinDuration int
}

// Trip is a routed car journey between two activities. Route and
// ExpectedDuration are populated by the router; a Trip with Origin ==
// Destination carries an empty Route and contributes no link instructions.
type Trip struct {
	Origin           network.NodeID
	Destination      network.NodeID
	Route            []RoutedEdge
	ExpectedDuration int
}

func (t *Trip) instructions() []Instruction {
	if len(t.Route) == 0 {
		return nil
	}
	out := make([]Instruction, 0, len(t.Route)*2)
	for _, re := range t.Route {
		out = append(out,
			Instruction{Kind: EnterLink, Edge: re.Edge, MinDuration: 0},
			Instruction{Kind: ExitLink, Edge: re.Edge, MinDuration: re.MinDuration},
		)
	}
	return out
}

// Plan is an agent's full day: an ordered sequence of activities and
// trips, always beginning and ending with an activity.
type Plan struct {
	Components []component
}

// New returns an empty Plan.
func New() *Plan {
	return &Plan{}
}

// AddActivity appends an activity to the plan.
func (p *Plan) AddActivity(a *Activity) {
	p.Components = append(p.Components, a)
}

// AddTrip appends a trip to the plan.
func (p *Plan) AddTrip(t *Trip) {
	p.Components = append(p.Components, t)
}

// Activities returns every Activity component in order.
func (p *Plan) Activities() []*Activity {
	var out []*Activity
	for _, c := range p.Components {
		if a, ok := c.(*Activity); ok {
			out = append(out, a)
		}
	}
	return out
}

// Trips returns every Trip component in order.
func (p *Plan) Trips() []*Trip {
	var out []*Trip
	for _, c := range p.Components {
		if t, ok := c.(*Trip); ok {
			out = append(out, t)
		}
	}
	return out
}

// Instructions flattens the plan into SOS -> (EnterActivity, ExitActivity)
// per activity -> (EnterLink, ExitLink) per routed edge -> EOS, consumed by
// the simulator as consecutive non-overlapping pairs.
func (p *Plan) Instructions() []Instruction {
	out := make([]Instruction, 0, 2+2*len(p.Components))
	out = append(out, Instruction{Kind: SOS, MinDuration: 0})
	for _, c := range p.Components {
		out = append(out, c.instructions()...)
	}
	out = append(out, Instruction{Kind: EOS, MinDuration: 0})
	return out
}

// Copy returns a shallow copy of the plan with its own Components slice;
// Activity/Trip pointers are shared, matching the cheap copy semantics a
// per-iteration replan needs when only some agents' plans change.
func (p *Plan) Copy() *Plan {
	cp := &Plan{Components: make([]component, len(p.Components))}
	copy(cp.Components, p.Components)
	return cp
}
