package network

import "fmt"

// GridOptions parameterizes a synthetic orthogonal grid network.
type GridOptions struct {
	Rows       int
	Cols       int
	EdgeLength float64 // meters, uniform across the grid
	FreeSpeed  float64 // meters/second
	FlowCap    float64 // vehicles/second per lane
	Lanes      int
}

// nodeID composes the fixed "r,c" coordinate scheme used by Grid.
func nodeID(r, c int) NodeID {
	return NodeID(fmt.Sprintf("%d,%d", r, c))
}

// Grid builds a rows x cols orthogonal network with 4-neighborhood
// connectivity: every interior edge is materialized in both directions so
// agents can traverse it either way, matching a two-way urban street grid.
// Vertices are added in row-major order; edges are emitted right-then-down
// per cell, each direction immediately followed by its reverse.
func Grid(opts GridOptions) (*Network, error) {
	if opts.Rows < 1 || opts.Cols < 1 {
		return nil, fmt.Errorf("network: grid requires rows>=1 and cols>=1, got rows=%d cols=%d", opts.Rows, opts.Cols)
	}

	n := New()
	for r := 0; r < opts.Rows; r++ {
		for c := 0; c < opts.Cols; c++ {
			n.AddNode(nodeID(r, c))
		}
	}

	addBoth := func(u, v NodeID) error {
		if err := n.AddEdge(u, v, opts.EdgeLength, opts.FreeSpeed, opts.FlowCap, opts.Lanes); err != nil {
			return err
		}
		return n.AddEdge(v, u, opts.EdgeLength, opts.FreeSpeed, opts.FlowCap, opts.Lanes)
	}

	for r := 0; r < opts.Rows; r++ {
		for c := 0; c < opts.Cols; c++ {
			u := nodeID(r, c)
			if c+1 < opts.Cols {
				if err := addBoth(u, nodeID(r, c+1)); err != nil {
					return nil, err
				}
			}
			if r+1 < opts.Rows {
				if err := addBoth(u, nodeID(r+1, c)); err != nil {
					return nil, err
				}
			}
		}
	}

	return n, nil
}
