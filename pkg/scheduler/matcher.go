package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

// InboundEvent is one platform event offered to trigger matching: a chat
// message, a keyword hit or an API call.
type InboundEvent struct {
	Type   models.TriggerType
	Text   string
	UserID string
	Source string
	Data   map[string]any
}

// TriggerMatcher fires executions for workflows whose trigger declarations
// match inbound events. This is the entry point the surrounding platform
// calls when something happens.
type TriggerMatcher struct {
	store    store.Store
	executor Executor
	logger   *slog.Logger
}

// NewTriggerMatcher creates a matcher.
func NewTriggerMatcher(st store.Store, executor Executor, logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		store:    st,
		executor: executor,
		logger:   logger.With("module", "trigger_matcher"),
	}
}

// Match runs every active workflow with a trigger declaration matching the
// event. Each workflow fires at most once per event even when several of its
// triggers match. A workflow rejected at execution time (deactivated or
// deleted in between) is logged and skipped; other workflows still fire.
func (m *TriggerMatcher) Match(ctx context.Context, event InboundEvent) ([]*models.Execution, error) {
	workflows, err := m.store.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0)

	for _, workflow := range workflows {
		if workflow.Status != models.WorkflowStatusActive {
			continue
		}

		trigger := matchingTrigger(workflow, event)
		if trigger == nil {
			continue
		}

		execution, err := m.executor.ExecuteWorkflow(ctx, workflow.ID, eventContext(event),
			models.TriggeredBy{
				Type:   models.TriggerSourceTrigger,
				UserID: event.UserID,
				Source: event.Source,
			})
		if err != nil {
			m.logger.WarnContext(ctx, "Triggered execution rejected",
				"workflow_id", workflow.ID, "trigger_id", trigger.ID, "error", err)

			continue
		}

		m.logger.InfoContext(ctx, "Trigger fired",
			"workflow_id", workflow.ID,
			"trigger_id", trigger.ID,
			"trigger_type", string(trigger.Type),
			"execution_id", execution.ID)

		executions = append(executions, execution)
	}

	return executions, nil
}

func matchingTrigger(workflow *models.Workflow, event InboundEvent) *models.Trigger {
	for _, trigger := range workflow.Triggers {
		if trigger == nil || !trigger.Enabled {
			continue
		}

		if triggerMatches(trigger, event) {
			return trigger
		}
	}

	return nil
}

// triggerMatches applies per-type matching: message triggers match any
// message event, keyword triggers require one of their keywords in the text,
// api triggers match api events (optionally pinned to an endpoint name).
// Schedule and manual triggers never match inbound events.
func triggerMatches(trigger *models.Trigger, event InboundEvent) bool {
	switch trigger.Type {
	case models.TriggerTypeMessage:
		return event.Type == models.TriggerTypeMessage
	case models.TriggerTypeKeyword:
		if event.Type != models.TriggerTypeMessage && event.Type != models.TriggerTypeKeyword {
			return false
		}

		return keywordHit(trigger.Config, event.Text)
	case models.TriggerTypeAPI:
		if event.Type != models.TriggerTypeAPI {
			return false
		}

		endpoint, _ := trigger.Config["endpoint"].(string)

		return endpoint == "" || endpoint == event.Source
	default:
		return false
	}
}

func keywordHit(config map[string]any, text string) bool {
	if config == nil {
		return false
	}

	keywords, ok := config["keywords"].([]any)
	if !ok {
		return false
	}

	folded := strings.ToLower(text)

	for _, keyword := range keywords {
		word, ok := keyword.(string)
		if !ok || word == "" {
			continue
		}

		if strings.Contains(folded, strings.ToLower(word)) {
			return true
		}
	}

	return false
}

func eventContext(event InboundEvent) map[string]any {
	context := map[string]any{
		"message":   event.Text,
		"source":    event.Source,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if event.UserID != "" {
		context["user"] = map[string]any{"id": event.UserID}
	}

	for key, value := range event.Data {
		context[key] = value
	}

	return context
}
