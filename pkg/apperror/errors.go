// Package apperror provides a structured way to report configuration,
// routing, and simulation errors with stable codes and severity levels.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a specific class of application error.
type ErrorCode string

const (
	// Network / topology
	CodeInvalidNetwork    ErrorCode = "INVALID_NETWORK"
	CodeEmptyNetwork      ErrorCode = "EMPTY_NETWORK"
	CodeDuplicateNode     ErrorCode = "DUPLICATE_NODE"
	CodeUnknownNode       ErrorCode = "UNKNOWN_NODE"
	CodeDuplicateEdge     ErrorCode = "DUPLICATE_EDGE"
	CodeMissingEdgeAttrs  ErrorCode = "MISSING_EDGE_ATTRS"
	CodeNegativeLength    ErrorCode = "NEGATIVE_LENGTH"
	CodeInvalidLanes      ErrorCode = "INVALID_LANES"
	CodeInvalidFreeSpeed  ErrorCode = "INVALID_FREE_SPEED"
	CodeInvalidFlowCap    ErrorCode = "INVALID_FLOW_CAPACITY"
	CodeSelfLoop          ErrorCode = "SELF_LOOP"

	// Plans
	CodeInvalidPlan             ErrorCode = "INVALID_PLAN"
	CodeInvalidActivityDuration ErrorCode = "INVALID_ACTIVITY_DURATION"
	CodeUnroutedTrip            ErrorCode = "UNROUTED_TRIP"
	CodeMalformedInstruction    ErrorCode = "MALFORMED_INSTRUCTION"

	// Routing
	CodeNoRoute          ErrorCode = "NO_ROUTE"
	CodeSourceEqualsSink ErrorCode = "SOURCE_EQUALS_SINK"

	// Planner / optimizer
	CodeInvalidProbability ErrorCode = "INVALID_PROBABILITY"
	CodeInvalidAlpha       ErrorCode = "INVALID_ALPHA"
	CodeInvalidHorizon     ErrorCode = "INVALID_HORIZON"

	// Event log
	CodeMalformedEvent ErrorCode = "MALFORMED_EVENT"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
	CodeIO              ErrorCode = "IO_ERROR"
)

// Severity indicates the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a structured application error with a stable code, an optional
// field, additional details, and an underlying cause.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an *Error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField creates an *Error with SeverityError and an offending field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// NewWarning creates an *Error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityWarning}
}

// Wrap creates an *Error that wraps cause with additional context.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

// WithDetails attaches a key/value pair and returns the same error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the offending field and returns the same error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is reports whether err is an *Error carrying code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, or CodeInternal if err is not an *Error.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ValidationErrors aggregates errors and warnings from a multi-check pass,
// e.g. validating a loaded network or plan set.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors returns an empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0), Warnings: make([]*Error, 0)}
}

// Add appends err to Errors or Warnings based on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError creates and appends a SeverityError entry.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddWarning creates and appends a SeverityWarning entry.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// HasErrors reports whether any non-warning errors were collected.
func (v *ValidationErrors) HasErrors() bool { return len(v.Errors) > 0 }

// IsValid reports whether no errors (warnings aside) were collected.
func (v *ValidationErrors) IsValid() bool { return !v.HasErrors() }

// ErrorMessages returns the string form of every collected error.
func (v *ValidationErrors) ErrorMessages() []string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// AsError returns v as an error if it has any errors, else nil. This lets a
// ValidationErrors be returned directly from a function with an (T, error)
// signature.
func (v *ValidationErrors) AsError() error {
	if v.HasErrors() {
		return errors.New(fmt.Sprintf("%d validation error(s): %v", len(v.Errors), v.ErrorMessages()))
	}
	return nil
}

// Predefined sentinel errors for common scenarios.
var (
	ErrEmptyNetwork      = New(CodeEmptyNetwork, "network has no nodes")
	ErrUnknownNode       = New(CodeUnknownNode, "node not found in network")
	ErrSourceEqualsSink  = New(CodeSourceEqualsSink, "source and sink cannot be the same node")
	ErrNoRoute           = New(CodeNoRoute, "no path from source to sink")
	ErrNilNetwork        = New(CodeNilInput, "network is nil")
	ErrInvalidProbability = New(CodeInvalidProbability, "probability must be within [0, 1]")
	ErrHorizonExceeded    = New(CodeInvalidHorizon, "notional clock exceeded horizon before an undefined activity duration could be filled")
)
