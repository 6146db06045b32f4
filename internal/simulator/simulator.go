// Package simulator runs the single-threaded discrete-event network
// loading loop: a global min-heap of agents, each stepping through its
// plan's flattened instruction stream two instructions (a transition pair)
// at a time, gated by per-edge storage/flow/min-duration constraints.
package simulator

import (
	"container/heap"

	"trafficsim/internal/events"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
	"trafficsim/internal/simlink"
)

// VehicleSize is the notional vehicle length used for storage-capacity
// bookkeeping, matching network.VehicleSize.
const VehicleSize = network.VehicleSize

// DefaultHorizon is the hard step cap applied when Run's horizon exceeds
// it: an agent plan that never resolves to EOS by one simulated day is a
// modeling bug, not a license to run forever.
const DefaultHorizon = 86400

// Simulator advances a population of agents through a shared network
// according to their plans' instruction streams.
type Simulator struct {
	net *network.Network
	log *events.Log

	simLinks map[network.Edge]*simlink.SimLink
	queue    priorityQueue

	cursors     map[string][]plan.Instruction
	cursorIndex map[string]int
	time        int
}

// New returns a Simulator over net, appending committed instructions to log.
func New(net *network.Network, log *events.Log) *Simulator {
	return &Simulator{net: net, log: log}
}

// Set initializes a simulation run: builds a fresh SimLink per network
// edge, flattens each agent's plan into its instruction stream, and seeds
// the heap with each agent's first transition pair.
func (s *Simulator) Set(plans map[string]*plan.Plan) {
	s.simLinks = make(map[network.Edge]*simlink.SimLink, len(s.net.Edges()))
	for _, e := range s.net.Edges() {
		attrs, _ := s.net.EdgeAttrs(e.From, e.To)
		s.simLinks[e] = simlink.New(attrs)
	}

	s.cursors = make(map[string][]plan.Instruction, len(plans))
	s.cursorIndex = make(map[string]int, len(plans))
	s.queue = make(priorityQueue, 0, len(plans))
	s.time = 0
	s.log.Reset()

	for agentID, p := range plans {
		instructions := p.Instructions()
		s.cursors[agentID] = instructions
		s.cursorIndex[agentID] = 0
		if len(instructions) < 2 {
			continue
		}
		a, b := instructions[0], instructions[1]
		heap.Push(&s.queue, &pairItem{Time: a.MinDuration, AgentID: agentID, A: a, B: b})
	}
}

// Run steps the simulation until the heap drains or the horizon is
// reached, whichever comes first. horizon is clamped to DefaultHorizon if
// it exceeds it or is non-positive.
func (s *Simulator) Run(horizon int) {
	if horizon <= 0 || horizon > DefaultHorizon {
		horizon = DefaultHorizon
	}
	for s.queue.Len() > 0 && s.time < horizon {
		s.Step()
	}
}

// Step pops the earliest-eligible agent and attempts its transition; on
// gate failure it is requeued one tick later.
func (s *Simulator) Step() {
	item := heap.Pop(&s.queue).(*pairItem)
	s.time = item.Time

	if !s.canExit(item.A) || !s.canEnter(item.B) {
		heap.Push(&s.queue, &pairItem{Time: s.time + 1, AgentID: item.AgentID, A: item.A, B: item.B})
		return
	}

	if item.A.Kind == plan.ExitLink {
		s.simLinks[item.A.Edge].Exit(s.time)
	}
	if item.B.Kind == plan.EnterLink {
		s.simLinks[item.B.Edge].Enter(item.AgentID, VehicleSize, s.time)
	}

	s.log.Add(s.time, item.AgentID, item.A)
	s.log.Add(s.time, item.AgentID, item.B)

	if item.B.Kind == plan.EOS {
		return
	}

	next := s.nextPair(item.AgentID, item.B)
	if next == nil {
		return
	}
	heap.Push(&s.queue, &pairItem{Time: s.time + next.A.MinDuration, AgentID: item.AgentID, A: next.A, B: next.B})
}

type pair struct{ A, B plan.Instruction }

// nextPair advances the agent's cursor past the pair that just committed
// (whose enter side was prevB) and returns the next transition pair, or nil
// if the stream is exhausted.
func (s *Simulator) nextPair(agentID string, prevB plan.Instruction) *pair {
	stream := s.cursors[agentID]
	// Find prevB's position: the cursor always advances by exactly 2, so
	// locate it by scanning from the front is unnecessary; instead track
	// position via a parallel index map.
	idx := s.cursorIndex[agentID] + 2
	s.cursorIndex[agentID] = idx
	if idx+1 >= len(stream) {
		return nil
	}
	return &pair{A: stream[idx], B: stream[idx+1]}
}

func (s *Simulator) canExit(a plan.Instruction) bool {
	if a.Kind != plan.ExitLink {
		return true
	}
	return s.simLinks[a.Edge].CanExit(s.time)
}

func (s *Simulator) canEnter(b plan.Instruction) bool {
	if b.Kind != plan.EnterLink {
		return true
	}
	return s.simLinks[b.Edge].CanEnter(VehicleSize, s.time)
}

// Log returns the event log this simulator writes to.
func (s *Simulator) Log() *events.Log { return s.log }
