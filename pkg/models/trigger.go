package models

// TriggerType identifies the external event class that may start a workflow.
type TriggerType string

const (
	TriggerTypeMessage  TriggerType = "message"
	TriggerTypeKeyword  TriggerType = "keyword"
	TriggerTypeSchedule TriggerType = "schedule"
	TriggerTypeAPI      TriggerType = "api"
	TriggerTypeManual   TriggerType = "manual"
)

// Trigger declares an entry condition for a workflow. The declarations are
// matched against inbound platform events; the graph's trigger node is where
// traversal starts once a match fires.
type Trigger struct {
	ID      string         `json:"id"`
	Type    TriggerType    `json:"type"    validate:"required"`
	Config  map[string]any `json:"config,omitempty"`
	Enabled bool           `json:"enabled"`
}
