package collaborators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/pkg/actions"
)

// Console delivers messages, notifications and tasks to the process log. It
// stands in for chat, alerting and ticketing systems in local and
// single-binary deployments.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger.With("module", "console")}
}

func (c *Console) SendMessage(ctx context.Context, message actions.Message) (map[string]any, error) {
	id := "msg-" + uuid.New().String()[:8]

	c.logger.InfoContext(ctx, "Delivering message",
		"message_id", id,
		"recipient", message.Recipient,
		"channel", message.Channel,
		"text", message.Text)

	return map[string]any{
		"message_id":   id,
		"delivered_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (c *Console) CreateTask(ctx context.Context, task actions.Task) (string, error) {
	id := "task-" + uuid.New().String()[:8]

	c.logger.InfoContext(ctx, "Creating task",
		"task_id", id,
		"title", task.Title,
		"priority", task.Priority,
		"assignee", task.Assignee,
		"tags", task.Tags)

	return id, nil
}

func (c *Console) SendNotification(ctx context.Context, notification actions.Notification) error {
	attrs := []any{
		"channel", notification.Channel,
		"recipient", notification.Recipient,
		"subject", notification.Subject,
		"message", notification.Message,
		"priority", notification.Priority,
	}

	switch notification.Priority {
	case "high", "urgent", "critical":
		c.logger.WarnContext(ctx, "Delivering notification", attrs...)
	default:
		c.logger.InfoContext(ctx, "Delivering notification", attrs...)
	}

	return nil
}
