// Package network holds the directed road network: nodes, edges, and the
// per-edge attributes (length, lanes, free speed, flow capacity) that the
// simulator and router derive their timing constants from.
package network

import (
	"math"
	"sync"

	"trafficsim/pkg/apperror"
)

// NodeID identifies an intersection in the network.
type NodeID string

// Edge identifies a directed road segment by its endpoints. A bidirectional
// road is modeled as two Edges, one per orientation.
type Edge struct {
	From NodeID
	To   NodeID
}

// EdgeAttrs holds the physical attributes of a road segment and the
// derived constants the simulator enforces on it.
type EdgeAttrs struct {
	Length      float64 // meters
	Lanes       int
	FreeSpeed   float64 // meters/second
	FlowCap     float64 // vehicles/second, per lane
	MinDuration int     // seconds, floor(Length/FreeSpeed)
	Headway     int     // seconds, floor(1/(FlowCap*Lanes)), minimum 1
	StorageCap  float64 // meters, Length*Lanes
}

// VehicleSize is the notional length, in meters, that one vehicle occupies
// of an edge's storage capacity while queued on it.
const VehicleSize = 4.0

// Network is a directed graph of an urban road network, safe for concurrent
// read access once built. Construction (AddNode/AddEdge) is not expected to
// race with reads: the graph is built once at load time and then read
// concurrently by solvers.
type Network struct {
	mu       sync.RWMutex
	nodes    map[NodeID]struct{}
	edges    map[Edge]*EdgeAttrs
	outgoing map[NodeID][]NodeID
	incoming map[NodeID][]NodeID
}

// New returns an empty Network.
func New() *Network {
	return &Network{
		nodes:    make(map[NodeID]struct{}),
		edges:    make(map[Edge]*EdgeAttrs),
		outgoing: make(map[NodeID][]NodeID),
		incoming: make(map[NodeID][]NodeID),
	}
}

// AddNode registers a node. Adding an already-present node is a no-op.
func (n *Network) AddNode(id NodeID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes[id] = struct{}{}
}

// AddEdge adds a directed edge with the given physical attributes, deriving
// MinDuration, Headway and StorageCap. Both endpoints must already exist.
// Returns an *apperror.Error if the edge is invalid.
func (n *Network) AddEdge(from, to NodeID, length, freeSpeed, flowCap float64, lanes int) error {
	if from == to {
		return apperror.New(apperror.CodeSelfLoop, "edge endpoints must differ").WithDetails("node", string(from))
	}
	if length <= 0 {
		return apperror.New(apperror.CodeNegativeLength, "edge length must be positive").WithDetails("length", length)
	}
	if lanes <= 0 {
		return apperror.New(apperror.CodeInvalidLanes, "edge lane count must be positive").WithDetails("lanes", lanes)
	}
	if freeSpeed <= 0 {
		return apperror.New(apperror.CodeInvalidFreeSpeed, "edge free speed must be positive").WithDetails("free_speed", freeSpeed)
	}
	if flowCap <= 0 {
		return apperror.New(apperror.CodeInvalidFlowCap, "edge flow capacity must be positive").WithDetails("flow_capacity", flowCap)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.nodes[from]; !ok {
		return apperror.New(apperror.CodeUnknownNode, "edge source node not in network").WithDetails("node", string(from))
	}
	if _, ok := n.nodes[to]; !ok {
		return apperror.New(apperror.CodeUnknownNode, "edge target node not in network").WithDetails("node", string(to))
	}

	e := Edge{From: from, To: to}
	if _, exists := n.edges[e]; exists {
		return apperror.New(apperror.CodeDuplicateEdge, "edge already present").WithDetails("edge", e)
	}

	headway := int(math.Floor(1.0 / (flowCap * float64(lanes))))
	if headway < 1 {
		headway = 1
	}

	n.edges[e] = &EdgeAttrs{
		Length:      length,
		Lanes:       lanes,
		FreeSpeed:   freeSpeed,
		FlowCap:     flowCap,
		MinDuration: int(math.Floor(length / freeSpeed)),
		Headway:     headway,
		StorageCap:  length * float64(lanes),
	}
	n.outgoing[from] = append(n.outgoing[from], to)
	n.incoming[to] = append(n.incoming[to], from)
	return nil
}

// Nodes returns every node ID in the network, in no particular order.
func (n *Network) Nodes() []NodeID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]NodeID, 0, len(n.nodes))
	for id := range n.nodes {
		out = append(out, id)
	}
	return out
}

// Edges returns every edge in the network, in no particular order.
func (n *Network) Edges() []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Edge, 0, len(n.edges))
	for e := range n.edges {
		out = append(out, e)
	}
	return out
}

// EdgeAttrs returns the attributes of edge (u,v), or false if it does not exist.
func (n *Network) EdgeAttrs(u, v NodeID) (EdgeAttrs, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	a, ok := n.edges[Edge{From: u, To: v}]
	if !ok {
		return EdgeAttrs{}, false
	}
	return *a, true
}

// Successors returns the nodes directly reachable from u.
func (n *Network) Successors(u NodeID) []NodeID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]NodeID(nil), n.outgoing[u]...)
}

// HasNode reports whether id is registered.
func (n *Network) HasNode(id NodeID) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.nodes[id]
	return ok
}

// NodeCount returns the number of nodes in the network.
func (n *Network) NodeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.nodes)
}

// EdgeCount returns the number of edges in the network.
func (n *Network) EdgeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.edges)
}

// MinimumDurations returns the free-flow traversal time of every edge,
// keyed by edge. Used to seed the expected-duration table before any
// simulation has been run.
func (n *Network) MinimumDurations() map[Edge]int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[Edge]int, len(n.edges))
	for e, a := range n.edges {
		out[e] = a.MinDuration
	}
	return out
}

// Validate checks the network for structural problems and returns an
// aggregated *apperror.ValidationErrors. An empty network is itself an
// error (it cannot route anything).
func (n *Network) Validate() *apperror.ValidationErrors {
	n.mu.RLock()
	defer n.mu.RUnlock()

	v := apperror.NewValidationErrors()
	if len(n.nodes) == 0 {
		v.Add(apperror.ErrEmptyNetwork)
		return v
	}
	for e, a := range n.edges {
		if _, ok := n.nodes[e.From]; !ok {
			v.AddError(apperror.CodeUnknownNode, "edge references unknown source node "+string(e.From))
		}
		if _, ok := n.nodes[e.To]; !ok {
			v.AddError(apperror.CodeUnknownNode, "edge references unknown target node "+string(e.To))
		}
		if a.MinDuration == 0 {
			v.AddWarning(apperror.CodeMissingEdgeAttrs, "edge "+string(e.From)+"->"+string(e.To)+" has zero free-flow duration")
		}
	}
	return v
}
