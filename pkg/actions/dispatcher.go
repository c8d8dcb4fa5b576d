package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/weftlabs/weft/pkg/interpolate"
	"github.com/weftlabs/weft/pkg/models"
)

// Request carries one interpolated action invocation into a handler.
type Request struct {
	Execution *models.Execution
	Config    map[string]any
	Scope     map[string]any
}

// Handler executes one action type against its collaborator.
type Handler func(ctx context.Context, req Request) (Result, error)

// Dispatcher routes action invocations to registered handlers. It owns the
// cross-cutting behavior every action shares: configuration interpolation
// against the execution scope, an optional per-attempt timeout, and the
// retryConfig backoff loop.
type Dispatcher struct {
	collaborators Collaborators
	handlers      map[ActionType]Handler
	logger        *slog.Logger
}

// NewDispatcher creates a dispatcher with the builtin handler set registered.
func NewDispatcher(collaborators Collaborators, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		collaborators: collaborators,
		handlers:      make(map[ActionType]Handler),
		logger:        logger.With("module", "actions"),
	}

	d.Register(ActionSendMessage, d.sendMessage)
	d.Register(ActionCallAPI, d.callAPI)
	d.Register(ActionUpdateUserData, d.updateUserData)
	d.Register(ActionCreateTask, d.createTask)
	d.Register(ActionSendNotification, d.sendNotification)
	d.Register(ActionTriggerWebhook, d.triggerWebhook)
	d.Register(ActionAIAnalysis, d.aiAnalysis)
	d.Register(ActionDataExport, d.dataExport)
	d.Register(ActionEscalateToHuman, d.escalateToHuman)

	return d
}

// Register installs a handler for an action type, replacing any previous one.
func (d *Dispatcher) Register(actionType ActionType, handler Handler) {
	d.handlers[actionType] = handler
}

// Execute runs one action. The configuration is interpolated once against the
// execution's context, variables and upstream node results; the handler is
// then invoked under the action's timeout and retry policy. Errors that
// survive the retry loop come back as *ExecutionError.
func (d *Dispatcher) Execute(
	ctx context.Context,
	actionType string,
	config map[string]any,
	execution *models.Execution,
	nodeResults map[string]any,
) (Result, error) {
	handler, ok := d.handlers[ActionType(actionType)]
	if !ok {
		return Result{}, fmt.Errorf("action type %q: %w", actionType, ErrUnknownActionType)
	}

	scope := interpolate.Scope(execution.Context, execution.VariableSnapshot(), nodeResults)

	req := Request{
		Execution: execution,
		Config:    interpolate.RenderConfig(config, scope),
		Scope:     scope,
	}

	retry := parseRetrySettings(req.Config["retryConfig"])
	timeout := durationField(req.Config, "timeout")
	logger := d.logger.With("action_type", actionType, "execution_id", execution.ID)

	var lastErr error

	for attempt := 1; attempt <= retry.attempts(); attempt++ {
		if attempt > 1 {
			delay := retry.delayBefore(attempt - 1)
			logger.InfoContext(ctx, "Retrying action",
				"attempt", attempt, "max_attempts", retry.attempts(), "delay", delay.String())

			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := d.runAttempt(ctx, handler, req, timeout)
		if err != nil {
			lastErr = err

			logger.WarnContext(ctx, "Action attempt failed", "attempt", attempt, "error", err)

			continue
		}

		return result, nil
	}

	return Result{}, &ExecutionError{
		ActionType: ActionType(actionType),
		Attempts:   retry.attempts(),
		Err:        lastErr,
	}
}

func (d *Dispatcher) runAttempt(ctx context.Context, handler Handler, req Request, timeout time.Duration) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return handler(ctx, req)
}
