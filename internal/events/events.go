// Package events holds the append-only log the simulator writes to and the
// reducers read from: one record per committed instruction, timestamped.
package events

import "trafficsim/internal/plan"

// Record is one committed instruction in the simulation's event log.
type Record struct {
	Time        int
	AgentID     string
	Instruction plan.Instruction
}

// Log is an append-only sequence of Records produced by a single
// simulation run. It has no buffering or flush semantics of its own;
// internal/report provides chunked persistence to disk.
type Log struct {
	records []Record
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a record to the log.
func (l *Log) Add(time int, agentID string, instruction plan.Instruction) {
	l.records = append(l.records, Record{Time: time, AgentID: agentID, Instruction: instruction})
}

// Reset discards all records, readying the log for a fresh simulation run.
func (l *Log) Reset() {
	l.records = nil
}

// Records returns the log's records in the order they were appended.
func (l *Log) Records() []Record {
	return l.records
}

// Len returns the number of records currently in the log.
func (l *Log) Len() int {
	return len(l.records)
}
