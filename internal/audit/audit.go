// Package audit records one Entry per replanning decision: which agent was
// re-routed and with what effect, and the outcome of each optimizer run.
// It is a pared-down descendant of a gRPC-service audit trail, trimmed of
// every field that only made sense behind a request/response transport.
package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action identifies what kind of replanning decision an Entry records.
type Action string

const (
	// ActionReplan is logged once per agent the planner actually re-routes.
	ActionReplan Action = "REPLAN"
	// ActionSolve is logged once per Optimizer.Run call.
	ActionSolve Action = "SOLVE"
)

// Outcome is the result of the action an Entry records.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Entry is a single audit record.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    Action         `json:"action"`
	Outcome   Outcome        `json:"outcome"`
	Iteration int            `json:"iteration"`
	AgentID   string         `json:"agent_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Sink persists a finished Entry. The default sink writes JSON lines to an
// io.Writer; a Store-backed sink could append to internal/history instead.
type Sink interface {
	Write(entry *Entry) error
}

// WriterSink writes each Entry as one JSON line to w, guarded by a mutex so
// concurrent planner goroutines can share a single Logger safely.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a Sink that appends newline-delimited JSON to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.w)
	return enc.Encode(entry)
}

// Logger builds and dispatches Entry records to a Sink.
type Logger struct {
	sink Sink
}

// NewLogger returns a Logger writing to sink.
func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// LogReplan records that an agent's plan was re-routed during iteration,
// capturing its total trip expected duration before and after replanning.
func (l *Logger) LogReplan(agentID string, iteration int, oldExpectedDuration, newExpectedDuration float64) error {
	return l.sink.Write(&Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    ActionReplan,
		Outcome:   OutcomeSuccess,
		Iteration: iteration,
		AgentID:   agentID,
		Details: map[string]any{
			"old_expected_duration": oldExpectedDuration,
			"new_expected_duration": newExpectedDuration,
		},
	})
}

// LogSolve records the outcome of one Optimizer.Run iteration. Pass a
// non-nil err to record a failed iteration.
func (l *Logger) LogSolve(iteration int, droppedAgentCount int, err error) error {
	outcome := OutcomeSuccess
	errMsg := ""
	if err != nil {
		outcome = OutcomeFailure
		errMsg = err.Error()
	}
	return l.sink.Write(&Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    ActionSolve,
		Outcome:   outcome,
		Iteration: iteration,
		Details: map[string]any{
			"dropped_agent_count": droppedAgentCount,
		},
		Error: errMsg,
	})
}
