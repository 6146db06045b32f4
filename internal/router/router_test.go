package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficsim/internal/cache"
	"trafficsim/internal/expected"
	"trafficsim/internal/network"
)

// diamondNet builds A -> B -> D (long way, 10s per edge) and an
// A -> C -> D shortcut (1s per edge), so the optimal route is unambiguous.
func diamondNet(t *testing.T) *network.Network {
	t.Helper()
	n := network.New()
	for _, id := range []network.NodeID{"A", "B", "C", "D"} {
		n.AddNode(id)
	}
	require.NoError(t, n.AddEdge("A", "B", 100, 10, 1, 1)) // minDur 10
	require.NoError(t, n.AddEdge("B", "D", 100, 10, 1, 1)) // minDur 10 -> total 20
	require.NoError(t, n.AddEdge("A", "C", 10, 10, 1, 1))  // minDur 1
	require.NoError(t, n.AddEdge("C", "D", 10, 10, 1, 1))  // minDur 1 -> total 2
	return n
}

// Property #7: the router always returns the minimum-expected-duration
// route, not merely any path.
func TestShortestPathOptimality(t *testing.T) {
	n := diamondNet(t)
	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	r := New(n, tbl)
	res, err := r.ShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)

	assert.Equal(t, 2.0, res.ExpectedDuration)
	require.Len(t, res.Route, 2)
	assert.Equal(t, network.Edge{From: "A", To: "C"}, res.Route[0].Edge)
	assert.Equal(t, network.Edge{From: "C", To: "D"}, res.Route[1].Edge)
}

func TestShortestPathReactsToUpdatedExpectations(t *testing.T) {
	n := diamondNet(t)
	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	// Congest the shortcut so the long way becomes cheaper.
	tbl.Update(network.Edge{From: "A", To: "C"}, 50)
	tbl.Update(network.Edge{From: "C", To: "D"}, 50)

	r := New(n, tbl)
	res, err := r.ShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.ExpectedDuration)
	require.Len(t, res.Route, 2)
	assert.Equal(t, network.Edge{From: "A", To: "B"}, res.Route[0].Edge)
}

func TestShortestPathSameSourceAndTargetIsEmpty(t *testing.T) {
	n := diamondNet(t)
	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	r := New(n, tbl)
	res, err := r.ShortestPath(context.Background(), "A", "A")
	require.NoError(t, err)
	assert.Empty(t, res.Route)
	assert.Zero(t, res.ExpectedDuration)
}

func TestShortestPathNoRouteErrors(t *testing.T) {
	n := network.New()
	n.AddNode("A")
	n.AddNode("B")
	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	r := New(n, tbl)
	_, err = r.ShortestPath(context.Background(), "A", "B")
	assert.Error(t, err)
}

func TestShortestPathUsesCacheOnRepeatedQuery(t *testing.T) {
	n := diamondNet(t)
	tbl, err := expected.New(n, 1.0)
	require.NoError(t, err)

	mem := cache.NewMemoryCache(cache.DefaultOptions())
	defer mem.Close()
	r := New(n, tbl).WithCache(mem)

	ctx := context.Background()
	first, err := r.ShortestPath(ctx, "A", "D")
	require.NoError(t, err)

	stats, err := mem.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalKeys)

	second, err := r.ShortestPath(ctx, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, first.ExpectedDuration, second.ExpectedDuration)
	require.Len(t, second.Route, len(first.Route))

	stats, err = mem.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
}
