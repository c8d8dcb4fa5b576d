package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus represents the lifecycle state of a single workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
	ExecutionStatusWaiting   ExecutionStatus = "waiting"
)

// Terminal reports whether the status admits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// TriggerSource says what kind of caller started an execution.
type TriggerSource string

const (
	TriggerSourceManual   TriggerSource = "manual"
	TriggerSourceTrigger  TriggerSource = "trigger"
	TriggerSourceAPI      TriggerSource = "api"
	TriggerSourceSchedule TriggerSource = "schedule"
)

// TriggeredBy records the origin of an execution.
type TriggeredBy struct {
	Type   TriggerSource `json:"type"`
	UserID string        `json:"user_id,omitempty"`
	Source string        `json:"source,omitempty"`
}

// ExecutionResult is the terminal outcome of an execution.
type ExecutionResult struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// LogLevel classifies execution log entries.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
	LogLevelDebug   LogLevel = "debug"
)

// ExecutionLog is one entry of an execution's ordered structured log.
// Times are milliseconds.
type ExecutionLog struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Level         LogLevel       `json:"level"`
	NodeID        string         `json:"node_id,omitempty"`
	Message       string         `json:"message"`
	Data          map[string]any `json:"data,omitempty"`
	ExecutionTime int64          `json:"execution_time,omitempty"`
}

// Execution is one run of a workflow against a context. Context is read-only
// input; Variables are seeded from the workflow's variables and may be mutated
// by actions. ExecutedNodes and Logs only grow, and parallel branches may
// append to them concurrently, so all mutation goes through the locked
// methods below.
type Execution struct {
	ID            string           `json:"id"`
	WorkflowID    string           `json:"workflow_id"`
	Status        ExecutionStatus  `json:"status"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       *time.Time       `json:"end_time,omitempty"`
	ExecutionTime int64            `json:"execution_time,omitempty"`
	TriggeredBy   TriggeredBy      `json:"triggered_by"`
	Context       map[string]any   `json:"context,omitempty"`
	Variables     map[string]any   `json:"variables,omitempty"`
	ExecutedNodes []string         `json:"executed_nodes"`
	CurrentNodeID string           `json:"current_node_id,omitempty"`
	Logs          []*ExecutionLog  `json:"logs"`
	Result        *ExecutionResult `json:"result,omitempty"`

	mu sync.Mutex
}

// NewExecution creates a running execution for the given workflow, seeding
// variables from the workflow definition.
func NewExecution(workflow *Workflow, context map[string]any, triggeredBy TriggeredBy) *Execution {
	if context == nil {
		context = map[string]any{}
	}

	return &Execution{
		ID:            NewExecutionID(),
		WorkflowID:    workflow.ID,
		Status:        ExecutionStatusRunning,
		StartTime:     time.Now(),
		TriggeredBy:   triggeredBy,
		Context:       context,
		Variables:     SeedVariables(workflow.Variables),
		ExecutedNodes: []string{},
		Logs:          []*ExecutionLog{},
	}
}

// NewExecutionID generates a short unique execution identifier.
func NewExecutionID() string {
	return fmt.Sprintf("exec-%s", uuid.New().String()[:8])
}

// AppendLog appends a log entry with a monotonically non-decreasing timestamp.
// Entries are dropped once the execution is terminal.
func (e *Execution) AppendLog(level LogLevel, nodeID, message string, data map[string]any) *ExecutionLog {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status.Terminal() {
		return nil
	}

	ts := time.Now()
	if n := len(e.Logs); n > 0 && ts.Before(e.Logs[n-1].Timestamp) {
		ts = e.Logs[n-1].Timestamp
	}

	entry := &ExecutionLog{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Level:     level,
		NodeID:    nodeID,
		Message:   message,
		Data:      data,
	}
	e.Logs = append(e.Logs, entry)

	return entry
}

// RecordNode appends nodeID to the executed sequence and marks it current.
func (e *Execution) RecordNode(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ExecutedNodes = append(e.ExecutedNodes, nodeID)
	e.CurrentNodeID = nodeID
}

// SetVariable updates one execution variable.
func (e *Execution) SetVariable(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Variables == nil {
		e.Variables = map[string]any{}
	}

	e.Variables[name] = value
}

// VariableSnapshot returns a shallow copy of the execution variables.
func (e *Execution) VariableSnapshot() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := make(map[string]any, len(e.Variables))
	for k, v := range e.Variables {
		snapshot[k] = v
	}

	return snapshot
}

// Finish stamps the terminal state, end time and duration. It reports whether
// the call transitioned the execution; once terminal, later calls are no-ops.
func (e *Execution) Finish(status ExecutionStatus, result *ExecutionResult) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status.Terminal() {
		return false
	}

	now := time.Now()
	e.Status = status
	e.EndTime = &now
	e.ExecutionTime = now.Sub(e.StartTime).Milliseconds()
	e.CurrentNodeID = ""
	e.Result = result

	return true
}

// Duration returns the wall-clock duration, or time since start while running.
func (e *Execution) Duration() time.Duration {
	if e.EndTime != nil {
		return e.EndTime.Sub(e.StartTime)
	}

	return time.Since(e.StartTime)
}
