package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"trafficsim/internal/network"
)

// TableHash returns a short content hash of a duration table, stable under
// map iteration order, so it changes if and only if the table's edge
// weights change.
func TableHash(durations map[network.Edge]float64) string {
	keys := make([]network.Edge, 0, len(durations))
	for e := range durations {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})

	h := sha256.New()
	for _, e := range keys {
		fmt.Fprintf(h, "%s>%s=%.6f;", e.From, e.To, durations[e])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// RouteKey builds the cache key for a single shortest-path query against a
// specific duration table version.
func RouteKey(tableHash string, source, target network.NodeID) string {
	return "route:" + tableHash + ":" + string(source) + ">" + string(target)
}
