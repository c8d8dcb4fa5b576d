package engine

import (
	"errors"
	"fmt"

	"github.com/weftlabs/weft/pkg/models"
)

// ErrExecutionNotRunning indicates a cancellation targeted an execution that
// already reached a terminal status.
var ErrExecutionNotRunning = errors.New("execution is not running")

// DefinitionError indicates the workflow definition itself is unusable:
// missing workflows, graphs without a trigger, unknown node or action types,
// dangling connections.
type DefinitionError struct {
	WorkflowID string
	NodeID     string
	Err        error
}

func (e *DefinitionError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("workflow %s node %s: %v", e.WorkflowID, e.NodeID, e.Err)
	}

	return fmt.Sprintf("workflow %s: %v", e.WorkflowID, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// NewDefinitionError creates a definition error scoped to a workflow and,
// optionally, one of its nodes.
func NewDefinitionError(workflowID, nodeID string, err error) *DefinitionError {
	return &DefinitionError{WorkflowID: workflowID, NodeID: nodeID, Err: err}
}

// IsDefinitionError checks if an error stems from an unusable workflow definition.
func IsDefinitionError(err error) bool {
	var target *DefinitionError

	return errors.As(err, &target)
}

// StateError indicates an operation was refused because of the workflow's
// current status, not its shape.
type StateError struct {
	WorkflowID string
	Status     models.WorkflowStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("workflow %s is %s and cannot be executed", e.WorkflowID, e.Status)
}

// IsStateError checks if an error indicates a workflow status conflict.
func IsStateError(err error) bool {
	var target *StateError

	return errors.As(err, &target)
}

// ConditionEvaluationError indicates a condition or loop guard could not be
// evaluated, as opposed to evaluating cleanly to false.
type ConditionEvaluationError struct {
	NodeID string
	Err    error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("condition on node %s: %v", e.NodeID, e.Err)
}

func (e *ConditionEvaluationError) Unwrap() error {
	return e.Err
}

// IsConditionEvaluationError checks if an error came from evaluating a
// condition rather than from the node's downstream work.
func IsConditionEvaluationError(err error) bool {
	var target *ConditionEvaluationError

	return errors.As(err, &target)
}
