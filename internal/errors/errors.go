package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphEmptyTaskList ErrorCode = "GRAPH-001"
	ErrCodeGraphCyclicDep     ErrorCode = "GRAPH-002"
	ErrCodeGraphUnknownDep    ErrorCode = "GRAPH-003"
	ErrCodeGraphDuplicateTask ErrorCode = "GRAPH-004"

	// Cost estimation errors (COST-001 to COST-099)
	ErrCodeCostUnsupportedType    ErrorCode = "COST-001"
	ErrCodeCostUnsupportedBackend ErrorCode = "COST-002"
	ErrCodeCostUnsupportedTier    ErrorCode = "COST-003"
	ErrCodeCostInvalidConfig      ErrorCode = "COST-004"

	// Prioritizer errors (SCHED-001 to SCHED-099)
	ErrCodeOptimizerFailure ErrorCode = "SCHED-001"
	ErrCodeUnknownStrategy  ErrorCode = "SCHED-002"

	// Schedule store errors (STORE-001 to STORE-099)
	ErrCodeStoreNotFound          ErrorCode = "STORE-001"
	ErrCodeStoreInvalidTransition ErrorCode = "STORE-002"
	ErrCodeStoreFailure           ErrorCode = "STORE-003"
	ErrCodeStoreInvalidRecord     ErrorCode = "STORE-004"

	// Workflow definition errors (WORKFLOW-001 to WORKFLOW-099)
	ErrCodeWorkflowNotFound    ErrorCode = "WORKFLOW-001"
	ErrCodeWorkflowInvalidTask ErrorCode = "WORKFLOW-002"
	ErrCodeWorkflowStorage     ErrorCode = "WORKFLOW-003"

	// Dispatch errors (DISPATCH-001 to DISPATCH-099)
	ErrCodeDispatchNoSchedule         ErrorCode = "DISPATCH-001"
	ErrCodeDispatchUnsupportedBackend ErrorCode = "DISPATCH-002"
	ErrCodeDispatchStaleSchedule      ErrorCode = "DISPATCH-003"

	// Backend execution errors (EXEC-001 to EXEC-099)
	ErrCodeExecFailed             ErrorCode = "EXEC-001"
	ErrCodeExecUnsupportedCircuit ErrorCode = "EXEC-002"
	ErrCodeExecUnknownOperation   ErrorCode = "EXEC-003"
	ErrCodeExecDuplicateBackend   ErrorCode = "EXEC-004"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
)

// FlowError represents an enhanced error with code, suggestions, and cause
type FlowError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *FlowError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// New creates a new FlowError
func New(code ErrorCode, message string) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new FlowError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *FlowError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new FlowError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *FlowError) WithSuggestion(suggestion string) *FlowError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// CodeOf returns the error code carried by err, unwrapping as needed.
// Returns an empty code for nil and for errors without a FlowError in
// their chain.
func CodeOf(err error) ErrorCode {
	var flowErr *FlowError
	if stderrors.As(err, &flowErr) {
		return flowErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Common error constructors for frequently used errors

// NewEmptyTaskListError creates an empty task list error
func NewEmptyTaskListError() *FlowError {
	return New(ErrCodeGraphEmptyTaskList, "workflow has no tasks").
		WithSuggestion("Add at least one task to the workflow before scheduling")
}

// NewCyclicDependencyError creates a cyclic dependency error with the cycle path
func NewCyclicDependencyError(path string) *FlowError {
	return Newf(ErrCodeGraphCyclicDep, "cyclic dependency detected: %s", path).
		WithSuggestion("Remove one of the dependencies in the cycle")
}

// NewUnsupportedTypeError creates an unsupported task type error
func NewUnsupportedTypeError(taskID int, taskType string) *FlowError {
	return Newf(ErrCodeCostUnsupportedType, "task %d has unsupported type %q", taskID, taskType).
		WithSuggestion("Use one of: classical, quantum")
}

// NewUnsupportedBackendError creates an unsupported backend error
func NewUnsupportedBackendError(backend string) *FlowError {
	return Newf(ErrCodeCostUnsupportedBackend, "unsupported backend: %s", backend).
		WithSuggestion("Use one of the backends in the pricing catalog (cirq, qiskit, pennylane)")
}

// NewScheduleNotFoundError creates a schedule not found error
func NewScheduleNotFoundError(workflowID int64) *FlowError {
	return Newf(ErrCodeStoreNotFound, "no schedule found for workflow %d", workflowID).
		WithSuggestion("Run 'qflow schedule --workflow <id>' to create a schedule first")
}

// NewWorkflowNotFoundError creates a workflow not found error
func NewWorkflowNotFoundError(workflowID int64) *FlowError {
	return Newf(ErrCodeWorkflowNotFound, "workflow not found: %d", workflowID).
		WithSuggestion("Run 'qflow workflow list' to see known workflows")
}

// NewOptimizerFailureError creates an optimizer failure error
func NewOptimizerFailureError(strategy string, cause error) *FlowError {
	return Wrap(ErrCodeOptimizerFailure, fmt.Sprintf("prioritizer %q failed", strategy), cause).
		WithSuggestion("Retry, or select a different strategy with --strategy")
}

// NewStorageFailureError creates a schedule store failure error
func NewStorageFailureError(op string, cause error) *FlowError {
	return Wrap(ErrCodeStoreFailure, fmt.Sprintf("schedule store %s failed", op), cause).
		WithSuggestion("Check that the data directory exists and is writable")
}
