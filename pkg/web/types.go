// Package web provides the HTTP handlers and request types for the workflow
// API.
package web

import "github.com/weftlabs/weft/pkg/models"

// CreateWorkflowRequest carries a full workflow definition. The server owns
// identity: id, status, version and timestamps are assigned here, whatever
// the payload says.
type CreateWorkflowRequest struct {
	Name        string               `json:"name"                  validate:"required,min=3"`
	Description string               `json:"description,omitempty"`
	Category    string               `json:"category,omitempty"`
	Owner       string               `json:"owner,omitempty"`
	Nodes       []*models.Node       `json:"nodes"`
	Connections []*models.Connection `json:"connections"`
	Variables   []*models.Variable   `json:"variables,omitempty"`
	Triggers    []*models.Trigger    `json:"triggers,omitempty"`
	Schedule    *models.Schedule     `json:"schedule,omitempty"`
	Permissions *models.Permissions  `json:"permissions,omitempty"`
}

// UpdateWorkflowRequest applies a partial update. Absent fields keep their
// current value; replacing nodes or connections bumps the workflow version.
type UpdateWorkflowRequest struct {
	Name        *string              `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string              `json:"description,omitempty"`
	Category    *string              `json:"category,omitempty"`
	Nodes       []*models.Node       `json:"nodes,omitempty"`
	Connections []*models.Connection `json:"connections,omitempty"`
	Variables   []*models.Variable   `json:"variables,omitempty"`
	Triggers    []*models.Trigger    `json:"triggers,omitempty"`
	Schedule    *models.Schedule     `json:"schedule,omitempty"`
}

// ExecuteWorkflowRequest supplies the event context for a run.
type ExecuteWorkflowRequest struct {
	Context map[string]any `json:"context,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
	Source  string         `json:"source,omitempty"`
}

// InstantiateTemplateRequest turns a template into a new draft workflow.
type InstantiateTemplateRequest struct {
	UserID      string         `json:"user_id,omitempty"`
	Name        string         `json:"name,omitempty"      validate:"omitempty,min=3"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

// CancelExecutionRequest names who asked for the cancellation.
type CancelExecutionRequest struct {
	CancelledBy string `json:"cancelled_by,omitempty"`
}

// InboundEventRequest is an external event (chat message, API call) offered
// for trigger matching.
type InboundEventRequest struct {
	Type   string         `json:"type"              validate:"required"`
	Text   string         `json:"text,omitempty"`
	UserID string         `json:"user_id,omitempty"`
	Source string         `json:"source,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}
