package xmlio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trafficsim/internal/network"
)

const networkXML = `<?xml version="1.0"?>
<network>
  <nodes>
    <node id="1" x="0" y="0"/>
    <node id="2" x="100" y="0"/>
    <node id="3" x="200" y="0"/>
  </nodes>
  <links>
    <link id="1" from="1" to="2" length="50" capacity="900" freespeed="10" permlanes="1"/>
    <link id="2" from="2" to="3" length="50" capacity="900" freespeed="10" permlanes="1"/>
  </links>
</network>`

const plansXML = `<?xml version="1.0"?>
<plans>
  <person id="p1">
    <plan>
      <act type="h" node="1" end_time="06:00"/>
      <leg mode="car"><route>1 2</route></leg>
      <act type="w" node="3" dur="08:00"/>
      <leg mode="car"><route></route></leg>
      <act type="w" node="3"/>
    </plan>
  </person>
</plans>`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadNetwork(t *testing.T) {
	path := writeTemp(t, "network.xml", networkXML)
	net, linkIndex, err := LoadNetwork(path)
	require.NoError(t, err)

	assert.Equal(t, 3, net.NodeCount())
	assert.Equal(t, 2, net.EdgeCount())

	attrs, ok := net.EdgeAttrs("1", "2")
	require.True(t, ok)
	assert.Equal(t, 0.25, attrs.FlowCap) // 900/3600
	assert.Equal(t, 5, attrs.MinDuration)

	assert.Equal(t, network.Edge{From: "1", To: "2"}, linkIndex["1"])
}

func TestLoadPlans(t *testing.T) {
	netPath := writeTemp(t, "network.xml", networkXML)
	net, linkIndex, err := LoadNetwork(netPath)
	require.NoError(t, err)

	plansPath := writeTemp(t, "plans.xml", plansXML)
	plans, err := LoadPlans(plansPath, linkIndex, net)
	require.NoError(t, err)

	p, ok := plans["p1"]
	require.True(t, ok)

	acts := p.Activities()
	require.Len(t, acts, 3)
	require.NotNil(t, acts[0].Duration)
	assert.Equal(t, 6*3600, *acts[0].Duration)
	require.NotNil(t, acts[1].Duration)
	assert.Equal(t, 8*3600, *acts[1].Duration)
	assert.Nil(t, acts[2].Duration)

	trips := p.Trips()
	require.Len(t, trips, 2)
	assert.Equal(t, network.NodeID("1"), trips[0].Origin)
	assert.Equal(t, network.NodeID("3"), trips[0].Destination)
	require.Len(t, trips[0].Route, 2)
	assert.Equal(t, network.Edge{From: "1", To: "2"}, trips[0].Route[0].Edge)

	assert.Equal(t, network.NodeID("3"), trips[1].Origin)
	assert.Equal(t, network.NodeID("3"), trips[1].Destination)
	assert.Len(t, trips[1].Route, 0)
}
