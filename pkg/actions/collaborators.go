package actions

import (
	"context"

	"github.com/weftlabs/weft/pkg/models"
)

// Message is an outbound chat message.
type Message struct {
	Recipient string `json:"recipient,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Text      string `json:"text"`
	Type      string `json:"type,omitempty"`
}

// MessageSender delivers chat messages to users or channels.
type MessageSender interface {
	SendMessage(ctx context.Context, message Message) (map[string]any, error)
}

// APIRequest describes an outbound HTTP call.
type APIRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    any               `json:"body,omitempty"`
}

// APIResponse is the reply to an APIRequest.
type APIResponse struct {
	StatusCode int               `json:"status_code"`
	Body       any               `json:"body,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// APICaller performs HTTP calls against external services.
type APICaller interface {
	CallAPI(ctx context.Context, request APIRequest) (*APIResponse, error)
}

// Task is a unit of human work created by a workflow.
type Task struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// TaskCreator files tasks in an external task system and returns the task id.
type TaskCreator interface {
	CreateTask(ctx context.Context, task Task) (string, error)
}

// Notification is an out-of-band alert to an operator or channel.
type Notification struct {
	Channel   string `json:"channel,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	Priority  string `json:"priority,omitempty"`
}

// NotificationSender delivers notifications.
type NotificationSender interface {
	SendNotification(ctx context.Context, notification Notification) error
}

// Webhook is an outbound webhook delivery.
type Webhook struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
}

// WebhookSender delivers webhooks and reports the response status.
type WebhookSender interface {
	SendWebhook(ctx context.Context, webhook Webhook) (int, error)
}

// Export describes a data export request.
type Export struct {
	Format      string `json:"format"` // csv, json or pdf
	Data        any    `json:"data,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// DataExporter materializes exports and returns their location.
type DataExporter interface {
	Export(ctx context.Context, export Export) (string, error)
}

// Classification is a classifier verdict with its confidence.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier analyzes text and returns a label with confidence. Shared by the
// ai_analysis action and ai_decision nodes.
type Classifier interface {
	Classify(ctx context.Context, text string, analysisType models.AnalysisType) (Classification, error)
}

// Collaborators bundles the external systems action handlers call into.
// Absent collaborators make the corresponding action types fail with
// ErrCollaboratorNotConfigured.
type Collaborators struct {
	Messages      MessageSender
	API           APICaller
	Tasks         TaskCreator
	Notifications NotificationSender
	Webhooks      WebhookSender
	Exports       DataExporter
	Classifier    Classifier
}
