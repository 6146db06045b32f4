package router

import (
	"encoding/json"

	"trafficsim/internal/network"
	"trafficsim/internal/plan"
)

// wireResult is Result's cache wire format; network.Edge's struct fields
// marshal directly, so no custom (Un)MarshalJSON is needed.
type wireResult struct {
	Route            []plan.RoutedEdge `json:"route"`
	ExpectedDuration float64           `json:"expected_duration"`
}

func encodeResult(r *Result) []byte {
	w := wireResult{Route: r.Route, ExpectedDuration: r.ExpectedDuration}
	data, _ := json.Marshal(w)
	return data
}

func decodeResult(raw []byte, _ *network.Network) (*Result, bool) {
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, false
	}
	return &Result{Route: w.Route, ExpectedDuration: w.ExpectedDuration}, true
}
