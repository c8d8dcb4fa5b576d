package models

// ConditionDefault is the connection condition label that fires only when no
// sibling connection matched the producing node's result.
const ConditionDefault = "default"

// Result classifications for nodes that report success/failure instead of a
// domain classification.
const (
	ClassificationSuccess = "success"
	ClassificationFailure = "failure"
)

// Connection is a directed edge between two nodes, optionally guarded by a
// condition label matched against the source node's result classification.
type Connection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	Condition    string `json:"condition,omitempty"`
}

// Guarded reports whether the connection only fires on a matching condition.
func (c *Connection) Guarded() bool {
	return c.Condition != ""
}
