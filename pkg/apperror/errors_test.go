package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeNoRoute, "no path from A to B")
	assert.Equal(t, "[NO_ROUTE] no path from A to B", err.Error())

	fieldErr := NewWithField(CodeInvalidProbability, "p out of range", "p")
	assert.Equal(t, "[INVALID_PROBABILITY] p out of range (field: p)", fieldErr.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, CodeIO, "failed to read network")
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeNoRoute, "no path")
	assert.True(t, Is(err, CodeNoRoute))
	assert.False(t, Is(err, CodeInvalidAlpha))
	assert.Equal(t, CodeNoRoute, Code(err))

	plain := errors.New("plain")
	assert.Equal(t, CodeInternal, Code(plain))
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	require.True(t, v.IsValid())

	v.AddWarning(CodeMissingEdgeAttrs, "edge 1->2 missing lanes, defaulting to 1")
	assert.True(t, v.IsValid())
	assert.Len(t, v.Warnings, 1)

	v.AddError(CodeNegativeLength, "edge 3->4 has negative length")
	assert.False(t, v.IsValid())
	assert.True(t, v.HasErrors())
	assert.Len(t, v.ErrorMessages(), 1)
	require.Error(t, v.AsError())
}

func TestWithDetailsAndField(t *testing.T) {
	err := New(CodeUnknownNode, "node missing").WithDetails("node", 42).WithField("target")
	assert.Equal(t, 42, err.Details["node"])
	assert.Equal(t, "target", err.Field)
}
