// Package router computes shortest paths over the expected-duration table,
// the "expected" edge weights agents replan against.
package router

import (
	"container/heap"
	"context"

	"trafficsim/internal/cache"
	"trafficsim/internal/expected"
	"trafficsim/internal/network"
	"trafficsim/internal/plan"
	"trafficsim/pkg/apperror"
)

const checkInterval = 256

// Router answers shortest-path queries against a network's current
// expected-duration table, optionally memoizing results in a Cache keyed by
// the table's content hash so repeated (source, target) queries within one
// iteration skip recomputation.
type Router struct {
	net   *network.Network
	table *expected.Table
	cache cache.Cache
}

// New builds a Router with no memoization cache.
func New(net *network.Network, table *expected.Table) *Router {
	return &Router{net: net, table: table}
}

// WithCache attaches a memoization cache, returning the same Router for
// chaining.
func (r *Router) WithCache(c cache.Cache) *Router {
	r.cache = c
	return r
}

// Result is a shortest-path answer: the routed edges in traversal order and
// the total expected duration summed across them.
type Result struct {
	Route            []plan.RoutedEdge
	ExpectedDuration float64
}

// ShortestPath returns the minimum expected-duration route from source to
// target. An empty Route with zero duration is returned when source equals
// target. Returns apperror.ErrNoRoute if target is unreachable.
func (r *Router) ShortestPath(ctx context.Context, source, target network.NodeID) (*Result, error) {
	if source == target {
		return &Result{Route: nil, ExpectedDuration: 0}, nil
	}

	weights := r.table.Snapshot()

	var tableHash, key string
	if r.cache != nil {
		tableHash = cache.TableHash(weights)
		key = cache.RouteKey(tableHash, source, target)
		if raw, err := r.cache.Get(ctx, key); err == nil {
			if res, ok := decodeResult(raw, r.net); ok {
				return res, nil
			}
		}
	}

	dist, parent, err := r.dijkstra(ctx, source, weights)
	if err != nil {
		return nil, err
	}

	d, reachable := dist[target]
	if !reachable {
		return nil, apperror.ErrNoRoute.WithDetails("source", source).WithDetails("target", target)
	}

	route := reconstructRoute(parent, source, target, r.net)

	res := &Result{Route: route, ExpectedDuration: d}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, encodeResult(res), 0)
	}
	return res, nil
}

// dijkstra runs single-source Dijkstra over weights, which must be
// non-negative; expected durations are bounded below by each edge's
// min_duration (>= 0), so this always holds in practice.
func (r *Router) dijkstra(ctx context.Context, source network.NodeID, weights map[network.Edge]float64) (map[network.NodeID]float64, map[network.NodeID]network.NodeID, error) {
	dist := make(map[network.NodeID]float64, r.net.NodeCount())
	parent := make(map[network.NodeID]network.NodeID, r.net.NodeCount())
	visited := make(map[network.NodeID]bool, r.net.NodeCount())

	dist[source] = 0

	pq := make(priorityQueue, 0, r.net.NodeCount())
	heap.Init(&pq)
	heap.Push(&pq, &pqItem{node: source, distance: 0})

	iterations := 0
	for pq.Len() > 0 {
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return dist, parent, ctx.Err()
			default:
			}
		}
		iterations++

		cur := heap.Pop(&pq).(*pqItem)
		u := cur.node
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, v := range r.net.Successors(u) {
			w, ok := weights[network.Edge{From: u, To: v}]
			if !ok {
				continue
			}
			newDist := dist[u] + w
			if existing, seen := dist[v]; !seen || newDist < existing {
				dist[v] = newDist
				parent[v] = u
				heap.Push(&pq, &pqItem{node: v, distance: newDist})
			}
		}
	}
	return dist, parent, nil
}

// reconstructRoute walks the parent map backwards from target to source,
// then reverses it, attaching each edge's min_duration from the network.
func reconstructRoute(parent map[network.NodeID]network.NodeID, source, target network.NodeID, net *network.Network) []plan.RoutedEdge {
	var nodes []network.NodeID
	for n := target; n != source; n = parent[n] {
		nodes = append(nodes, n)
	}
	nodes = append(nodes, source)

	route := make([]plan.RoutedEdge, 0, len(nodes)-1)
	for i := len(nodes) - 1; i > 0; i-- {
		from, to := nodes[i], nodes[i-1]
		attrs, ok := net.EdgeAttrs(from, to)
		minDur := 0
		if ok {
			minDur = attrs.MinDuration
		}
		route = append(route, plan.RoutedEdge{Edge: network.Edge{From: from, To: to}, MinDuration: minDur})
	}
	return route
}
