package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeDerivesConstants(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")

	require.NoError(t, n.AddEdge("A", "B", 100, 10, 0.5, 1))

	attrs, ok := n.EdgeAttrs("A", "B")
	require.True(t, ok)
	assert.Equal(t, 10, attrs.MinDuration) // floor(100/10)
	assert.Equal(t, 2, attrs.Headway)      // floor(1/(0.5*1)) = 2
	assert.Equal(t, 100.0, attrs.StorageCap) // length*lanes
}

func TestAddEdgeHeadwayFloorsToOne(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")
	require.NoError(t, n.AddEdge("A", "B", 50, 10, 2.0, 2)) // 1/(2*2)=0.25 -> floors to 0 -> clamp 1

	attrs, ok := n.EdgeAttrs("A", "B")
	require.True(t, ok)
	assert.Equal(t, 1, attrs.Headway)
}

func TestAddEdgeRejectsInvalidAttrs(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")

	assert.Error(t, n.AddEdge("A", "A", 10, 1, 1, 1))
	assert.Error(t, n.AddEdge("A", "B", 0, 1, 1, 1))
	assert.Error(t, n.AddEdge("A", "B", 10, 0, 1, 1))
	assert.Error(t, n.AddEdge("A", "B", 10, 1, 0, 1))
	assert.Error(t, n.AddEdge("A", "B", 10, 1, 1, 0))
	assert.Error(t, n.AddEdge("A", "C", 10, 1, 1, 1)) // unknown node
}

func TestAddEdgeRejectsDuplicate(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")
	require.NoError(t, n.AddEdge("A", "B", 10, 1, 1, 1))
	assert.Error(t, n.AddEdge("A", "B", 10, 1, 1, 1))
}

func TestValidateEmptyNetwork(t *testing.T) {
	n := New()
	v := n.Validate()
	assert.False(t, v.IsValid())
}

func TestValidateWellFormedNetwork(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")
	require.NoError(t, n.AddEdge("A", "B", 10, 1, 1, 1))
	v := n.Validate()
	assert.True(t, v.IsValid())
}

func TestGridTopology(t *testing.T) {
	g, err := Grid(GridOptions{Rows: 2, Cols: 2, EdgeLength: 100, FreeSpeed: 10, FlowCap: 0.5, Lanes: 1})
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	// Each of the 4 interior connections materialized in both directions.
	assert.Equal(t, 8, g.EdgeCount())
	assert.True(t, g.HasNode(NodeID("0,0")))
	assert.True(t, g.HasNode(NodeID("1,1")))
	_, ok := g.EdgeAttrs("0,0", "0,1")
	assert.True(t, ok)
	_, ok = g.EdgeAttrs("0,1", "0,0")
	assert.True(t, ok)
}

func TestGridRejectsBadDimensions(t *testing.T) {
	_, err := Grid(GridOptions{Rows: 0, Cols: 2, EdgeLength: 1, FreeSpeed: 1, FlowCap: 1, Lanes: 1})
	assert.Error(t, err)
}

func TestLinearTopology(t *testing.T) {
	l, err := Linear(LinearOptions{NumNodes: 3, EdgeLength: 100, FreeSpeed: 10, FlowCap: 0.5, Lanes: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, l.NodeCount())
	assert.Equal(t, 4, l.EdgeCount())
	_, ok := l.EdgeAttrs("0", "1")
	assert.True(t, ok)
	_, ok = l.EdgeAttrs("1", "2")
	assert.True(t, ok)
}

func TestLinearRejectsTooFewNodes(t *testing.T) {
	_, err := Linear(LinearOptions{NumNodes: 1, EdgeLength: 1, FreeSpeed: 1, FlowCap: 1, Lanes: 1})
	assert.Error(t, err)
}

func TestMinimumDurations(t *testing.T) {
	n := New()
	n.AddNode("A")
	n.AddNode("B")
	require.NoError(t, n.AddEdge("A", "B", 100, 10, 1, 1))

	durs := n.MinimumDurations()
	assert.Equal(t, 10, durs[Edge{From: "A", To: "B"}])
}
