// Package models defines the core domain models for graph-based workflow automation.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft      WorkflowStatus = "draft"      // Editable, not executable
	WorkflowStatusActive     WorkflowStatus = "active"     // Executable
	WorkflowStatusPaused     WorkflowStatus = "paused"     // Temporarily not executable
	WorkflowStatusDeprecated WorkflowStatus = "deprecated" // Retired, not executable
)

// Workflow represents a node-based automation graph executed against event contexts.
type Workflow struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"                  validate:"required,min=3"`
	Description string             `json:"description,omitempty"`
	Version     int                `json:"version"`
	Status      WorkflowStatus     `json:"status"                validate:"required"`
	Category    string             `json:"category,omitempty"`
	Nodes       []*Node            `json:"nodes"`
	Connections []*Connection      `json:"connections"`
	Variables   []*Variable        `json:"variables,omitempty"`
	Triggers    []*Trigger         `json:"triggers,omitempty"`
	Schedule    *Schedule          `json:"schedule,omitempty"`
	Analytics   *WorkflowAnalytics `json:"analytics,omitempty"`
	Permissions Permissions        `json:"permissions"`
	Owner       string             `json:"owner,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// FindNode returns the node with the given id, or nil.
func (w *Workflow) FindNode(nodeID string) *Node {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node
		}
	}

	return nil
}

// TriggerNodes returns the workflow's trigger nodes in declaration order.
func (w *Workflow) TriggerNodes() []*Node {
	var nodes []*Node

	for _, node := range w.Nodes {
		if node.Type == NodeTypeTrigger {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// OutgoingConnections returns the connections leaving nodeID in declaration order.
func (w *Workflow) OutgoingConnections(nodeID string) []*Connection {
	var conns []*Connection

	for _, conn := range w.Connections {
		if conn.SourceNodeID == nodeID {
			conns = append(conns, conn)
		}
	}

	return conns
}

// EnsureAnalytics returns the workflow's analytics aggregate, allocating it on
// first use.
func (w *Workflow) EnsureAnalytics() *WorkflowAnalytics {
	if w.Analytics == nil {
		w.Analytics = &WorkflowAnalytics{}
	}

	return w.Analytics
}
