// Package store provides standardized error types for storage operations.
package store

import (
	"errors"
	"fmt"
)

// Standard storage error types that all implementations return.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowExists indicates a workflow with the same identifier already exists.
	ErrWorkflowExists = errors.New("workflow already exists")

	// ErrExecutionNotFound indicates an execution was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrTemplateNotFound indicates a workflow template was not found by the given identifier.
	ErrTemplateNotFound = errors.New("template not found")
)

// Error wraps storage failures with the operation and record identity.
type Error struct {
	Op   string // Operation being performed (e.g. "WorkflowByID", "SaveExecution")
	Kind string // Record kind ("workflow", "execution", "template")
	ID   string // Record ID if applicable
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
	}

	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error comparison against the sentinel errors.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a storage error with record context.
func NewError(op, kind, id string, err error) *Error {
	return &Error{Op: op, Kind: kind, ID: id, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsNotFound checks if an error indicates any record was not found.
func IsNotFound(err error) bool {
	return IsWorkflowNotFound(err) || IsExecutionNotFound(err) || IsTemplateNotFound(err)
}
