// Package simlink implements the per-edge FIFO queue the simulator enforces
// storage, flow and minimum-duration constraints through.
package simlink

import "trafficsim/internal/network"

// queuedVehicle is one agent occupying storage on a link, with the
// timestamp at which it becomes eligible to exit.
type queuedVehicle struct {
	agentID      string
	size         float64
	earliestExit int
}

// SimLink is the live queue state of one directed edge during a
// simulation run.
type SimLink struct {
	storageCapacity float64
	headway         int
	minDuration     int

	queue            []queuedVehicle
	earliestNextExit int
}

// New builds a SimLink from an edge's static attributes.
func New(attrs network.EdgeAttrs) *SimLink {
	return &SimLink{
		storageCapacity: attrs.StorageCap,
		headway:         attrs.Headway,
		minDuration:     attrs.MinDuration,
	}
}

// Reset empties the queue, returning the link to its initial state.
func (s *SimLink) Reset() {
	s.queue = nil
	s.earliestNextExit = 0
}

// CanExit reports whether the vehicle at the head of the queue may leave
// at time: it must have dwelt at least MinDuration, and the link's flow
// capacity (headway) must not be currently exhausted.
func (s *SimLink) CanExit(time int) bool {
	if len(s.queue) == 0 {
		return false
	}
	head := s.queue[0]
	return head.earliestExit <= time && s.hasFlowCapacity(time)
}

// Exit pops the head vehicle and advances the flow-capacity gate by the
// link's headway. Callers must have verified CanExit first.
func (s *SimLink) Exit(time int) {
	s.earliestNextExit = time + s.headway
	s.queue = s.queue[1:]
}

// CanEnter reports whether a vehicle of the given size may enter the link's
// storage at time.
func (s *SimLink) CanEnter(size float64, time int) bool {
	return s.hasStorageCapacity(size)
}

// Enter appends the vehicle to the tail of the queue. Its earliest-exit
// time is time+MinDuration: the link's free-flow traversal time.
func (s *SimLink) Enter(agentID string, size float64, time int) {
	s.queue = append(s.queue, queuedVehicle{
		agentID:      agentID,
		size:         size,
		earliestExit: time + s.minDuration,
	})
}

func (s *SimLink) hasStorageCapacity(size float64) bool {
	occupied := 0.0
	for _, v := range s.queue {
		occupied += v.size
	}
	return occupied+size <= s.storageCapacity
}

func (s *SimLink) hasFlowCapacity(time int) bool {
	return time >= s.earliestNextExit
}

// Len returns the number of vehicles currently queued.
func (s *SimLink) Len() int { return len(s.queue) }
