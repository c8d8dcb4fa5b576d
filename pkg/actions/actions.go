// Package actions dispatches workflow action nodes to registered handlers,
// applying configuration interpolation, timeouts and retry policy before the
// side effect reaches an external collaborator.
package actions

import (
	"errors"
	"fmt"
)

// ActionType identifies the behavior of an action node. The set is closed:
// the dispatcher registers exactly one handler per type.
type ActionType string

const (
	ActionSendMessage      ActionType = "send_message"
	ActionCallAPI          ActionType = "call_api"
	ActionUpdateUserData   ActionType = "update_user_data"
	ActionCreateTask       ActionType = "create_task"
	ActionSendNotification ActionType = "send_notification"
	ActionTriggerWebhook   ActionType = "trigger_webhook"
	ActionAIAnalysis       ActionType = "ai_analysis"
	ActionDataExport       ActionType = "data_export"
	ActionEscalateToHuman  ActionType = "escalate_to_human"
)

// Types lists every supported action type.
func Types() []ActionType {
	return []ActionType{
		ActionSendMessage,
		ActionCallAPI,
		ActionUpdateUserData,
		ActionCreateTask,
		ActionSendNotification,
		ActionTriggerWebhook,
		ActionAIAnalysis,
		ActionDataExport,
		ActionEscalateToHuman,
	}
}

// Result is the outcome of one action handler call. Classification is set
// only by handlers that produce a routing label (ai_analysis); other handlers
// leave it empty and downstream connections match on success/failure.
type Result struct {
	Success        bool           `json:"success"`
	Output         map[string]any `json:"output,omitempty"`
	Classification string         `json:"classification,omitempty"`
}

var (
	// ErrUnknownActionType is returned when no handler is registered for an action type.
	ErrUnknownActionType = errors.New("action type not registered")

	// ErrInvalidActionConfig is returned when an action configuration is missing required fields.
	ErrInvalidActionConfig = errors.New("invalid action configuration")

	// ErrCollaboratorNotConfigured is returned when a handler's external collaborator is nil.
	ErrCollaboratorNotConfigured = errors.New("collaborator not configured")
)

// ExecutionError wraps a handler failure that survived the retry policy.
type ExecutionError struct {
	ActionType ActionType
	Attempts   int
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("action %s failed after %d attempts: %v", e.ActionType, e.Attempts, e.Err)
	}

	return fmt.Sprintf("action %s failed: %v", e.ActionType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsActionExecutionError checks if an error is a handler failure that
// exhausted its retries.
func IsActionExecutionError(err error) bool {
	var target *ExecutionError

	return errors.As(err, &target)
}
