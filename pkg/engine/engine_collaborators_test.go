package engine

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/mocks"
	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store/memory"
)

func actionNode(id string, config map[string]any) *models.Node {
	return &models.Node{
		ID:     id,
		Type:   models.NodeTypeAction,
		Name:   id,
		Config: config,
	}
}

// TestExecuteWorkflow_CollaboratorPayloads runs a workflow through every
// collaborator-backed action type and checks the interpolated payload each
// collaborator receives, including values produced by earlier nodes.
func TestExecuteWorkflow_CollaboratorPayloads(t *testing.T) {
	classifier := &mocks.MockClassifier{}
	classifier.On("Classify", mock.Anything, "Where is my invoice?", models.AnalysisIntentDetection).
		Return(actions.Classification{Label: "question", Confidence: 0.82}, nil)

	messages := &mocks.MockMessageSender{}
	messages.On("SendMessage", mock.Anything, actions.Message{
		Recipient: "u-9",
		Text:      "Re: Where is my invoice?",
		Type:      "text",
	}).Return(map[string]any{"delivery_id": "d-42"}, nil)

	api := &mocks.MockAPICaller{}
	api.On("CallAPI", mock.Anything, actions.APIRequest{
		Method: "POST",
		URL:    "https://crm.example.com/contacts/u-9",
		Body:   map[string]any{"intent": "question"},
	}).Return(&actions.APIResponse{StatusCode: 201}, nil)

	tasks := &mocks.MockTaskCreator{}
	tasks.On("CreateTask", mock.Anything, actions.Task{
		Title:       "Follow up with Joan",
		Description: "Intent: question",
		Priority:    "medium",
		Tags:        []string{"followup"},
	}).Return("T-100", nil)

	notifications := &mocks.MockNotificationSender{}
	notifications.On("SendNotification", mock.Anything, actions.Notification{
		Channel:  "#support",
		Message:  "Joan needs help",
		Priority: "normal",
	}).Return(nil)

	webhooks := &mocks.MockWebhookSender{}
	webhooks.On("SendWebhook", mock.Anything, actions.Webhook{
		URL:     "https://hooks.example.com/weft",
		Method:  "POST",
		Payload: map[string]any{"task": "T-100"},
	}).Return(204, nil)

	exports := &mocks.MockDataExporter{}
	exports.On("Export", mock.Anything, actions.Export{
		Format:      "csv",
		Destination: "s3://weft/reports",
	}).Return("s3://weft/reports/run.csv", nil)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	st := memory.NewStore()
	dispatcher := actions.NewDispatcher(actions.Collaborators{
		Messages:      messages,
		API:           api,
		Tasks:         tasks,
		Notifications: notifications,
		Webhooks:      webhooks,
		Exports:       exports,
		Classifier:    classifier,
	}, logger)
	engine := New(st, dispatcher, nil, nil, nil, nil, logger)

	saveWorkflow(t, st, &models.Workflow{
		ID:     "wf-support-pipeline",
		Name:   "Support pipeline",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.Node{
			triggerNode("start"),
			actionNode("analyze", map[string]any{
				"actionType":   "ai_analysis",
				"text":         "{{message.text}}",
				"analysisType": "intent_detection",
			}),
			actionNode("reply", map[string]any{
				"actionType": "send_message",
				"message":    "Re: {{message.text}}",
				"recipient":  "{{user.id}}",
			}),
			actionNode("fetch", map[string]any{
				"actionType": "call_api",
				"url":        "https://crm.example.com/contacts/{{user.id}}",
				"method":     "post",
				"body":       map[string]any{"intent": "{{nodes.analyze.classification}}"},
			}),
			actionNode("file", map[string]any{
				"actionType":  "create_task",
				"title":       "Follow up with {{user.name}}",
				"description": "Intent: {{nodes.analyze.classification}}",
				"tags":        []any{"followup"},
			}),
			actionNode("alert", map[string]any{
				"actionType": "send_notification",
				"message":    "{{user.name}} needs help",
				"channel":    "#support",
			}),
			actionNode("hook", map[string]any{
				"actionType": "trigger_webhook",
				"url":        "https://hooks.example.com/weft",
				"payload":    map[string]any{"task": "{{nodes.file.task_id}}"},
			}),
			actionNode("report", map[string]any{
				"actionType":  "data_export",
				"format":      "csv",
				"destination": "s3://weft/reports",
			}),
		},
		Connections: []*models.Connection{
			connect("c1", "start", "analyze", ""),
			connect("c2", "analyze", "reply", ""),
			connect("c3", "reply", "fetch", ""),
			connect("c4", "fetch", "file", ""),
			connect("c5", "file", "alert", ""),
			connect("c6", "alert", "hook", ""),
			connect("c7", "hook", "report", ""),
		},
	})

	execution, err := engine.ExecuteWorkflow(t.Context(), "wf-support-pipeline",
		map[string]any{
			"user":    map[string]any{"id": "u-9", "name": "Joan"},
			"message": map[string]any{"text": "Where is my invoice?"},
		},
		models.TriggeredBy{Type: models.TriggerSourceManual, UserID: "u-9"})

	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t,
		[]string{"start", "analyze", "reply", "fetch", "file", "alert", "hook", "report"},
		execution.ExecutedNodes)
	require.NotNil(t, execution.Result)
	assert.True(t, execution.Result.Success)
	assert.Equal(t, "s3://weft/reports/run.csv", execution.Result.Output["location"])

	mock.AssertExpectationsForObjects(t, classifier, messages, api, tasks, notifications, webhooks, exports)
}
