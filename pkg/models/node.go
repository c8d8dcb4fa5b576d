package models

import "time"

// NodeType identifies the behavior of a workflow node. The set is closed: the
// engine registers exactly one runner per type and rejects anything else at
// activation time.
type NodeType string

const (
	NodeTypeTrigger    NodeType = "trigger"
	NodeTypeCondition  NodeType = "condition"
	NodeTypeAction     NodeType = "action"
	NodeTypeDelay      NodeType = "delay"
	NodeTypeParallel   NodeType = "parallel"
	NodeTypeLoop       NodeType = "loop"
	NodeTypeSwitch     NodeType = "switch"
	NodeTypeAIDecision NodeType = "ai_decision"
)

// NodeTypes lists every supported node type.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeTrigger,
		NodeTypeCondition,
		NodeTypeAction,
		NodeTypeDelay,
		NodeTypeParallel,
		NodeTypeLoop,
		NodeTypeSwitch,
		NodeTypeAIDecision,
	}
}

// Node represents a single typed unit of work in a workflow graph.
type Node struct {
	ID       string         `json:"id"     validate:"required"`
	Type     NodeType       `json:"type"   validate:"required"`
	Name     string         `json:"name,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Metadata NodeMetadata   `json:"metadata"`
}

// NodeMetadata carries rolling per-node execution statistics. It is mutated
// exactly once per node execution attempt, success or failure, and only by the
// execution engine. Times are milliseconds.
type NodeMetadata struct {
	ExecutionCount       int        `json:"execution_count"`
	AverageExecutionTime float64    `json:"average_execution_time"`
	LastExecuted         *time.Time `json:"last_executed,omitempty"`
	ErrorCount           int        `json:"error_count"`
}

// Record folds one execution sample (milliseconds) into the rolling aggregate.
func (m *NodeMetadata) Record(sampleMs float64, at time.Time, failed bool) {
	m.ExecutionCount++
	m.AverageExecutionTime = IncrementalAverage(m.AverageExecutionTime, sampleMs, m.ExecutionCount)
	m.LastExecuted = &at

	if failed {
		m.ErrorCount++
	}
}

// IncrementalAverage folds the n-th sample into a running mean.
func IncrementalAverage(oldAvg, sample float64, n int) float64 {
	if n <= 1 {
		return sample
	}

	return (oldAvg*float64(n-1) + sample) / float64(n)
}
