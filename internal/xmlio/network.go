// Package xmlio loads networks and plans from the MATSim-style XML formats
// described by the external interfaces this simulator accepts: network
// topology with link physical attributes, and per-person daily plans with
// routed legs.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"os"

	"trafficsim/internal/network"
	"trafficsim/pkg/apperror"
)

type xmlNetwork struct {
	XMLName xml.Name  `xml:"network"`
	Nodes   []xmlNode `xml:"nodes>node"`
	Links   []xmlLink `xml:"links>link"`
}

type xmlNode struct {
	ID string `xml:"id,attr"`
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
}

type xmlLink struct {
	ID        string  `xml:"id,attr"`
	From      string  `xml:"from,attr"`
	To        string  `xml:"to,attr"`
	Length    float64 `xml:"length,attr"`
	Capacity  float64 `xml:"capacity,attr"` // vehicles/hour in the XML
	FreeSpeed float64 `xml:"freespeed,attr"`
	PermLanes int     `xml:"permlanes,attr"`
}

// LoadNetwork parses a network XML document into a *network.Network, and
// returns an index from the document's link IDs to the resulting directed
// edges, since plans reference links by ID rather than by endpoint pair.
func LoadNetwork(path string) (*network.Network, map[string]network.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeIO, "failed to open network file").WithDetails("path", path)
	}
	defer f.Close()

	var doc xmlNetwork
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeIO, "failed to parse network XML").WithDetails("path", path)
	}

	net := network.New()
	for _, n := range doc.Nodes {
		net.AddNode(network.NodeID(n.ID))
	}

	linkIndex := make(map[string]network.Edge, len(doc.Links))
	for _, l := range doc.Links {
		flowCapPerSec := l.Capacity / 3600.0
		if err := net.AddEdge(network.NodeID(l.From), network.NodeID(l.To), l.Length, l.FreeSpeed, flowCapPerSec, l.PermLanes); err != nil {
			return nil, nil, apperror.Wrap(err, apperror.CodeInvalidNetwork, fmt.Sprintf("link %s invalid", l.ID)).WithDetails("link_id", l.ID)
		}
		linkIndex[l.ID] = network.Edge{From: network.NodeID(l.From), To: network.NodeID(l.To)}
	}

	return net, linkIndex, nil
}
