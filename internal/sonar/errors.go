package sonar

import (
	"errors"
	"fmt"
)

// ErrPollExhausted is returned when the task is still not terminal after the
// configured number of attempts
var ErrPollExhausted = errors.New("task did not reach a terminal state")

// errTaskPending signals the poll loop to wait and try again
var errTaskPending = errors.New("task pending")

// ParseError reports a response that lacks a field the workflow depends on
type ParseError struct {
	Resource string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s response: field %q: %v", e.Resource, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s response: missing field %q", e.Resource, e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
