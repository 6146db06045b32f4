package xmlio

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"trafficsim/internal/network"
	"trafficsim/internal/plan"
	"trafficsim/pkg/apperror"
)

type xmlPlans struct {
	XMLName xml.Name    `xml:"plans"`
	Persons []xmlPerson `xml:"person"`
}

type xmlPerson struct {
	ID   string  `xml:"id,attr"`
	Plan xmlPlan `xml:"plan"`
}

type xmlPlan struct {
	Components []xmlComponent `xml:",any"`
}

// xmlComponent captures both <act> and <leg> elements so the plan's
// activity/trip alternation can be read in document order.
type xmlComponent struct {
	XMLName  xml.Name `xml:""`
	Type     string   `xml:"type,attr"`
	Node     string   `xml:"node,attr"`
	EndTime  string   `xml:"end_time,attr"`
	Dur      string   `xml:"dur,attr"`
	Mode     string   `xml:"mode,attr"`
	RouteRaw xmlRoute `xml:"route"`
}

type xmlRoute struct {
	Links string `xml:",chardata"`
}

// LoadPlans parses a plans XML document into per-person Plans, resolving
// each leg's route of link IDs into network edges via linkIndex, and
// fixing up each Trip's origin/destination from the bracketing activities.
func LoadPlans(path string, linkIndex map[string]network.Edge, net *network.Network) (map[string]*plan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeIO, "failed to open plans file").WithDetails("path", path)
	}
	defer f.Close()

	var doc xmlPlans
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeIO, "failed to parse plans XML").WithDetails("path", path)
	}

	plans := make(map[string]*plan.Plan, len(doc.Persons))
	for _, person := range doc.Persons {
		p := plan.New()
		var lastLocation network.NodeID
		var pendingTrip *plan.Trip

		for _, c := range person.Plan.Components {
			switch c.XMLName.Local {
			case "act":
				loc := network.NodeID(c.Node)
				duration, err := activityDuration(c)
				if err != nil {
					return nil, apperror.Wrap(err, apperror.CodeInvalidActivityDuration, "bad activity duration").WithDetails("person", person.ID)
				}
				var actType plan.ActivityType
				switch c.Type {
				case "h":
					actType = plan.Home
				case "w":
					actType = plan.Work
				default:
					actType = plan.ActivityType(c.Type)
				}

				if pendingTrip != nil {
					pendingTrip.Destination = loc
					p.AddTrip(pendingTrip)
					pendingTrip = nil
				}
				p.AddActivity(&plan.Activity{Type: actType, Location: loc, Duration: duration})
				lastLocation = loc

			case "leg":
				route, err := resolveRoute(c.RouteRaw.Links, linkIndex, net)
				if err != nil {
					return nil, apperror.Wrap(err, apperror.CodeUnroutedTrip, "bad leg route").WithDetails("person", person.ID)
				}
				pendingTrip = &plan.Trip{Origin: lastLocation, Route: route}
			}
		}

		plans[person.ID] = p
	}

	return plans, nil
}

func activityDuration(c xmlComponent) (*int, error) {
	switch {
	case c.EndTime != "":
		s, err := timeToSeconds(c.EndTime)
		return &s, err
	case c.Dur != "":
		s, err := timeToSeconds(c.Dur)
		return &s, err
	default:
		return nil, nil
	}
}

func timeToSeconds(s string) (int, error) {
	parts := strings.Split(s, ":")
	var h, m, sec int
	var err error
	switch len(parts) {
	case 2:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, err
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, err
		}
		return h*3600 + m*60, nil
	case 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, err
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, err
		}
		if sec, err = strconv.Atoi(parts[2]); err != nil {
			return 0, err
		}
		return h*3600 + m*60 + sec, nil
	default:
		return 0, fmt.Errorf("invalid time format: %q", s)
	}
}

func resolveRoute(raw string, linkIndex map[string]network.Edge, net *network.Network) ([]plan.RoutedEdge, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]plan.RoutedEdge, 0, len(fields))
	for _, id := range fields {
		e, ok := linkIndex[id]
		if !ok {
			return nil, fmt.Errorf("route references unknown link id %q", id)
		}
		attrs, ok := net.EdgeAttrs(e.From, e.To)
		if !ok {
			return nil, fmt.Errorf("route link id %q resolved to missing edge", id)
		}
		out = append(out, plan.RoutedEdge{Edge: e, MinDuration: attrs.MinDuration})
	}
	return out, nil
}
