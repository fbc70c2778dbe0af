package exitcode

import (
	"os"
	"strings"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// ValidationError indicates invalid input (empty task list, bad config, cyclic deps)
	ValidationError = 2

	// NotFound indicates a missing workflow or schedule
	NotFound = 3

	// StorageError indicates the persistence layer failed
	StorageError = 4

	// OptimizerError indicates the prioritizer could not produce an order
	OptimizerError = 5

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Coded errors map by their code family; anything else is a general error.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeGraphEmptyTaskList,
		errors.ErrCodeGraphCyclicDep,
		errors.ErrCodeGraphUnknownDep,
		errors.ErrCodeGraphDuplicateTask,
		errors.ErrCodeCostUnsupportedType,
		errors.ErrCodeCostUnsupportedBackend,
		errors.ErrCodeCostUnsupportedTier,
		errors.ErrCodeCostInvalidConfig,
		errors.ErrCodeWorkflowInvalidTask,
		errors.ErrCodeConfigInvalid,
		errors.ErrCodeUnknownStrategy:
		return ValidationError

	case errors.ErrCodeStoreNotFound,
		errors.ErrCodeWorkflowNotFound,
		errors.ErrCodeDispatchNoSchedule,
		errors.ErrCodeConfigNotFound:
		return NotFound

	case errors.ErrCodeStoreFailure,
		errors.ErrCodeWorkflowStorage:
		return StorageError

	case errors.ErrCodeOptimizerFailure:
		return OptimizerError
	}

	// Cobra usage errors carry no code
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unknown command") || strings.Contains(msg, "required flag") ||
		strings.Contains(msg, "invalid argument") {
		return ValidationError
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ValidationError:
		return "Validation error (invalid input or arguments)"
	case NotFound:
		return "Workflow or schedule not found"
	case StorageError:
		return "Storage failure"
	case OptimizerError:
		return "Prioritizer failure"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
