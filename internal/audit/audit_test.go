package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReplanWritesOneJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewWriterSink(&buf))

	require.NoError(t, l.LogReplan("a1", 3, 120.0, 95.5))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, ActionReplan, e.Action)
	assert.Equal(t, OutcomeSuccess, e.Outcome)
	assert.Equal(t, "a1", e.AgentID)
	assert.Equal(t, 3, e.Iteration)
	assert.Equal(t, 95.5, e.Details["new_expected_duration"])
	assert.NotEmpty(t, e.ID)
}

func TestLogSolveRecordsFailureOutcome(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewWriterSink(&buf))

	require.NoError(t, l.LogSolve(2, 1, errors.New("replan aborted")))

	var e Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, ActionSolve, e.Action)
	assert.Equal(t, OutcomeFailure, e.Outcome)
	assert.Equal(t, "replan aborted", e.Error)
	assert.Equal(t, float64(1), e.Details["dropped_agent_count"])
}

func TestLogSolveRecordsSuccessOutcomeWithoutError(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewWriterSink(&buf))

	require.NoError(t, l.LogSolve(0, 0, nil))

	var e Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, OutcomeSuccess, e.Outcome)
	assert.Empty(t, e.Error)
}

func TestWriterSinkAppendsSequentialEntriesOnSeparateLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewWriterSink(&buf))

	require.NoError(t, l.LogSolve(0, 0, nil))
	require.NoError(t, l.LogSolve(1, 0, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}
