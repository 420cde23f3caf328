package types

import "errors"

// Standard errors. Manager operations wrap expected conditions in a Result
// instead of returning these directly; the sentinels exist for the few
// places (adapters, stores) that do surface them as Go errors.
var (
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrExternalTool = errors.New("external tool failed")
	ErrProcess      = errors.New("process operation failed")
)

// Result is the outcome of a manager-level mutation. Expected failures
// (duplicate add, unknown id, bad input) are reported here rather than as
// errors: the CLI is the only caller and must print a human message either
// way. Infrastructure failures still travel as Go errors and abort the
// command.
type Result struct {
	Success bool
	Message string
}

// OK builds a successful Result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed Result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}
