package actions

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/weftlabs/weft/pkg/models"
)

func (d *Dispatcher) sendMessage(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Messages == nil {
		return Result{}, fmt.Errorf("send_message: %w", ErrCollaboratorNotConfigured)
	}

	text, err := requiredString(req.Config, "message")
	if err != nil {
		return Result{}, err
	}

	message := Message{
		Recipient: stringField(req.Config, "recipient"),
		Channel:   stringField(req.Config, "channel"),
		Text:      text,
		Type:      stringField(req.Config, "messageType"),
	}
	if message.Type == "" {
		message.Type = "text"
	}

	delivery, err := d.collaborators.Messages.SendMessage(ctx, message)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send message: %w", err)
	}

	output := map[string]any{"sent": true, "message": text}
	for k, v := range delivery {
		output[k] = v
	}

	return Result{Success: true, Output: output}, nil
}

func (d *Dispatcher) callAPI(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.API == nil {
		return Result{}, fmt.Errorf("call_api: %w", ErrCollaboratorNotConfigured)
	}

	url, err := requiredString(req.Config, "url")
	if err != nil {
		return Result{}, err
	}

	method := strings.ToUpper(stringField(req.Config, "method"))
	if method == "" {
		method = http.MethodGet
	}

	response, err := d.collaborators.API.CallAPI(ctx, APIRequest{
		Method:  method,
		URL:     url,
		Headers: stringMapField(req.Config, "headers"),
		Body:    req.Config["body"],
	})
	if err != nil {
		return Result{}, fmt.Errorf("api call failed: %w", err)
	}

	return Result{
		Success: true,
		Output: map[string]any{
			"status_code": response.StatusCode,
			"body":        response.Body,
			"headers":     response.Headers,
		},
	}, nil
}

// updateUserData writes config["updates"] into the execution variables. It is
// the only handler with no external collaborator.
func (d *Dispatcher) updateUserData(_ context.Context, req Request) (Result, error) {
	updates := mapField(req.Config, "updates")
	if len(updates) == 0 {
		return Result{}, fmt.Errorf("missing or invalid %q in configuration: %w", "updates", ErrInvalidActionConfig)
	}

	updated := make([]string, 0, len(updates))

	for name, value := range updates {
		req.Execution.SetVariable(name, value)
		updated = append(updated, name)
	}

	sort.Strings(updated)

	return Result{Success: true, Output: map[string]any{"updated": updated}}, nil
}

func (d *Dispatcher) createTask(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Tasks == nil {
		return Result{}, fmt.Errorf("create_task: %w", ErrCollaboratorNotConfigured)
	}

	title, err := requiredString(req.Config, "title")
	if err != nil {
		return Result{}, err
	}

	task := Task{
		Title:       title,
		Description: stringField(req.Config, "description"),
		Priority:    stringField(req.Config, "priority"),
		Assignee:    stringField(req.Config, "assignee"),
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}

	if tags, ok := req.Config["tags"].([]any); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				task.Tags = append(task.Tags, s)
			}
		}
	}

	taskID, err := d.collaborators.Tasks.CreateTask(ctx, task)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create task: %w", err)
	}

	return Result{
		Success: true,
		Output:  map[string]any{"task_id": taskID, "title": title, "priority": task.Priority},
	}, nil
}

func (d *Dispatcher) sendNotification(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Notifications == nil {
		return Result{}, fmt.Errorf("send_notification: %w", ErrCollaboratorNotConfigured)
	}

	message, err := requiredString(req.Config, "message")
	if err != nil {
		return Result{}, err
	}

	notification := Notification{
		Channel:   stringField(req.Config, "channel"),
		Recipient: stringField(req.Config, "recipient"),
		Subject:   stringField(req.Config, "subject"),
		Message:   message,
		Priority:  stringField(req.Config, "priority"),
	}
	if notification.Priority == "" {
		notification.Priority = "normal"
	}

	err = d.collaborators.Notifications.SendNotification(ctx, notification)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send notification: %w", err)
	}

	return Result{
		Success: true,
		Output:  map[string]any{"notified": true, "channel": notification.Channel},
	}, nil
}

func (d *Dispatcher) triggerWebhook(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Webhooks == nil {
		return Result{}, fmt.Errorf("trigger_webhook: %w", ErrCollaboratorNotConfigured)
	}

	url, err := requiredString(req.Config, "url")
	if err != nil {
		return Result{}, err
	}

	method := strings.ToUpper(stringField(req.Config, "method"))
	if method == "" {
		method = http.MethodPost
	}

	statusCode, err := d.collaborators.Webhooks.SendWebhook(ctx, Webhook{
		URL:     url,
		Method:  method,
		Headers: stringMapField(req.Config, "headers"),
		Payload: mapField(req.Config, "payload"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("webhook delivery failed: %w", err)
	}

	return Result{
		Success: true,
		Output:  map[string]any{"delivered": true, "status_code": statusCode},
	}, nil
}

func (d *Dispatcher) aiAnalysis(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Classifier == nil {
		return Result{}, fmt.Errorf("ai_analysis: %w", ErrCollaboratorNotConfigured)
	}

	text, err := requiredString(req.Config, "text")
	if err != nil {
		return Result{}, err
	}

	analysisType := models.AnalysisType(stringField(req.Config, "analysisType"))
	if analysisType == "" {
		analysisType = models.AnalysisSentiment
	}

	classification, err := d.collaborators.Classifier.Classify(ctx, text, analysisType)
	if err != nil {
		return Result{}, fmt.Errorf("classification failed: %w", err)
	}

	return Result{
		Success:        true,
		Classification: classification.Label,
		Output: map[string]any{
			"classification": classification.Label,
			"confidence":     classification.Confidence,
			"analysisType":   string(analysisType),
		},
	}, nil
}

func (d *Dispatcher) dataExport(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Exports == nil {
		return Result{}, fmt.Errorf("data_export: %w", ErrCollaboratorNotConfigured)
	}

	format, err := requiredString(req.Config, "format")
	if err != nil {
		return Result{}, err
	}

	switch format {
	case "csv", "json", "pdf":
	default:
		return Result{}, fmt.Errorf("unsupported export format %q: %w", format, ErrInvalidActionConfig)
	}

	location, err := d.collaborators.Exports.Export(ctx, Export{
		Format:      format,
		Data:        req.Config["data"],
		Destination: stringField(req.Config, "destination"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("export failed: %w", err)
	}

	return Result{
		Success: true,
		Output:  map[string]any{"location": location, "format": format},
	}, nil
}

// escalateToHuman files an escalation task and notifies the escalation
// channel, composing the task and notification collaborators.
func (d *Dispatcher) escalateToHuman(ctx context.Context, req Request) (Result, error) {
	if d.collaborators.Tasks == nil || d.collaborators.Notifications == nil {
		return Result{}, fmt.Errorf("escalate_to_human: %w", ErrCollaboratorNotConfigured)
	}

	reason := stringField(req.Config, "reason")
	if reason == "" {
		reason = "workflow escalation"
	}

	priority := stringField(req.Config, "priority")
	if priority == "" {
		priority = "high"
	}

	taskID, err := d.collaborators.Tasks.CreateTask(ctx, Task{
		Title:       fmt.Sprintf("Escalation: %s", reason),
		Description: stringField(req.Config, "details"),
		Priority:    priority,
		Assignee:    stringField(req.Config, "assignee"),
		Tags:        []string{"escalation"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create escalation task: %w", err)
	}

	err = d.collaborators.Notifications.SendNotification(ctx, Notification{
		Channel:  stringField(req.Config, "channel"),
		Subject:  "Workflow escalation",
		Message:  reason,
		Priority: priority,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to notify about escalation: %w", err)
	}

	return Result{
		Success: true,
		Output:  map[string]any{"task_id": taskID, "notified": true, "reason": reason},
	}, nil
}
