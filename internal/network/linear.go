package network

import "fmt"

// LinearOptions parameterizes a synthetic single-corridor network (a
// simple path of N nodes), the minimal topology that exercises the
// simulator's storage/flow/min-duration gates without grid routing choices.
type LinearOptions struct {
	NumNodes   int
	EdgeLength float64
	FreeSpeed  float64
	FlowCap    float64
	Lanes      int
}

// Linear builds a path network 0 -> 1 -> ... -> (NumNodes-1), materialized
// in both directions so it can be traversed either way.
func Linear(opts LinearOptions) (*Network, error) {
	if opts.NumNodes < 2 {
		return nil, fmt.Errorf("network: linear requires at least 2 nodes, got %d", opts.NumNodes)
	}

	n := New()
	for i := 0; i < opts.NumNodes; i++ {
		n.AddNode(NodeID(fmt.Sprintf("%d", i)))
	}

	for i := 1; i < opts.NumNodes; i++ {
		u := NodeID(fmt.Sprintf("%d", i-1))
		v := NodeID(fmt.Sprintf("%d", i))
		if err := n.AddEdge(u, v, opts.EdgeLength, opts.FreeSpeed, opts.FlowCap, opts.Lanes); err != nil {
			return nil, err
		}
		if err := n.AddEdge(v, u, opts.EdgeLength, opts.FreeSpeed, opts.FlowCap, opts.Lanes); err != nil {
			return nil, err
		}
	}

	return n, nil
}
