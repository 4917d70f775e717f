package orchestrators

import "errors"

// ValidationError is returned when an orchestrator input is structurally
// invalid (e.g. empty id list, missing confirmation). Handlers map it to a
// 400 response.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
// PRE: e.Message is set.
// POST: returns the validation error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// ErrNothingToProcess is returned when a bulk operation's selection contains
// no processable candidates. It is a warning, not a failure.
var ErrNothingToProcess = errors.New("no candidates to process")
