// Package engine executes workflow graphs: it loads definitions from the
// store, walks nodes from a trigger, routes connections on classification
// labels, and records outcomes, logs, events and analytics along the way.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/analytics"
	"github.com/weftlabs/weft/pkg/eventbus"
	"github.com/weftlabs/weft/pkg/events"
	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/tracing"
)

// Engine runs workflow executions. All collaborators are injected; the event
// bus, tracer and analytics recorder are optional and disabled when nil.
type Engine struct {
	store      store.Store
	dispatcher *actions.Dispatcher
	classifier actions.Classifier
	recorder   *analytics.Recorder
	bus        eventbus.EventBus
	tracer     trace.Tracer
	logger     *slog.Logger

	runners map[models.NodeType]runner

	mu      sync.Mutex
	running map[string]*inflight
}

// inflight is a registered in-process execution that CancelExecution can reach.
type inflight struct {
	execution *models.Execution
	cancel    context.CancelFunc
}

// New creates an engine.
func New(
	st store.Store,
	dispatcher *actions.Dispatcher,
	classifier actions.Classifier,
	recorder *analytics.Recorder,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Engine {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("engine")
	}

	e := &Engine{
		store:      st,
		dispatcher: dispatcher,
		classifier: classifier,
		recorder:   recorder,
		bus:        bus,
		tracer:     tracer,
		logger:     logger.With("module", "engine"),
		running:    make(map[string]*inflight),
	}

	e.runners = map[models.NodeType]runner{
		models.NodeTypeTrigger:    e.runTrigger,
		models.NodeTypeCondition:  e.runCondition,
		models.NodeTypeAction:     e.runAction,
		models.NodeTypeDelay:      e.runDelay,
		models.NodeTypeParallel:   e.runParallel,
		models.NodeTypeLoop:       e.runLoop,
		models.NodeTypeSwitch:     e.runSwitch,
		models.NodeTypeAIDecision: e.runAIDecision,
	}

	return e
}

// ExecuteWorkflow runs one execution of the workflow synchronously and
// returns the finished execution record. An error comes back only when no
// execution could be created: unknown workflow, not active, or no trigger
// node. Once the record exists, failures land in its status and result
// instead.
func (e *Engine) ExecuteWorkflow(
	ctx context.Context,
	workflowID string,
	eventContext map[string]any,
	triggeredBy models.TriggeredBy,
) (*models.Execution, error) {
	workflow, execution, err := e.beginExecution(ctx, workflowID, eventContext, triggeredBy)
	if err != nil {
		return nil, err
	}

	return e.runExecution(ctx, workflow, execution, eventContext, triggeredBy), nil
}

// ExecuteWorkflowAsync starts the execution in the background and returns a
// detached snapshot of the running record. Pre-flight rejections surface
// synchronously exactly as in ExecuteWorkflow; after that the outcome lives
// in the stored execution and on the event bus.
func (e *Engine) ExecuteWorkflowAsync(
	ctx context.Context,
	workflowID string,
	eventContext map[string]any,
	triggeredBy models.TriggeredBy,
) (*models.Execution, error) {
	workflow, execution, err := e.beginExecution(ctx, workflowID, eventContext, triggeredBy)
	if err != nil {
		return nil, err
	}

	snapshot := execution.Clone()

	// The run must outlive the caller's request context.
	go e.runExecution(context.WithoutCancel(ctx), workflow, execution, eventContext, triggeredBy)

	return snapshot, nil
}

func (e *Engine) beginExecution(
	ctx context.Context,
	workflowID string,
	eventContext map[string]any,
	triggeredBy models.TriggeredBy,
) (*models.Workflow, *models.Execution, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		if store.IsWorkflowNotFound(err) {
			return nil, nil, NewDefinitionError(workflowID, "", err)
		}

		return nil, nil, err
	}

	if workflow.Status != models.WorkflowStatusActive {
		return nil, nil, &StateError{WorkflowID: workflowID, Status: workflow.Status}
	}

	if len(workflow.TriggerNodes()) == 0 {
		return nil, nil, NewDefinitionError(workflowID, "", models.ErrNoTriggerNode)
	}

	execution := models.NewExecution(workflow, eventContext, triggeredBy)
	if err := e.store.SaveExecution(ctx, execution); err != nil {
		return nil, nil, err
	}

	return workflow, execution, nil
}

func (e *Engine) runExecution(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	eventContext map[string]any,
	triggeredBy models.TriggeredBy,
) *models.Execution {
	workflowID := workflow.ID
	triggers := workflow.TriggerNodes()

	runCtx, cancel := context.WithCancel(ctx)
	e.track(execution, cancel)

	defer func() {
		cancel()
		e.untrack(execution.ID)
	}()

	logger := e.logger.With("workflow_id", workflowID, "execution_id", execution.ID)
	logger.InfoContext(ctx, "Workflow execution started", "triggered_by", string(triggeredBy.Type))

	spanCtx, span := tracing.StartSpan(runCtx, e.tracer, "engine.execute_workflow",
		attribute.String(tracing.WorkflowIDKey, workflowID),
		attribute.String(tracing.WorkflowNameKey, workflow.Name),
		attribute.String(tracing.ExecutionIDKey, execution.ID),
		attribute.String(tracing.TriggerTypeKey, string(triggeredBy.Type)),
	)
	defer span.End()

	e.publish(ctx, workflowID, events.ExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.ExecutionStartedEvent, workflowID),
		ExecutionID:  execution.ID,
		WorkflowName: workflow.Name,
		TriggeredBy:  triggeredBy,
		Context:      eventContext,
	})
	execution.AppendLog(models.LogLevelInfo, "", "Execution started", map[string]any{
		"workflow": workflow.Name,
	})

	rt := newRunState(workflow, execution)
	err := e.runNode(spanCtx, rt, triggers[0], newVisitSet())

	// Terminal bookkeeping must survive the caller giving up.
	persistCtx := context.WithoutCancel(ctx)

	switch {
	case err == nil:
		execution.AppendLog(models.LogLevelInfo, "", "Execution completed", nil)

		if execution.Finish(models.ExecutionStatusCompleted, &models.ExecutionResult{Success: true, Output: rt.finalOutput()}) {
			e.publish(persistCtx, workflowID, events.ExecutionCompleted{
				BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, workflowID),
				ExecutionID:   execution.ID,
				Status:        string(execution.Status),
				DurationMs:    execution.ExecutionTime,
				NodesExecuted: len(execution.ExecutedNodes),
				Output:        rt.finalOutput(),
			})
		}

		logger.InfoContext(persistCtx, "Workflow execution completed",
			"duration_ms", execution.ExecutionTime,
			"nodes_executed", len(execution.ExecutedNodes))
	case runCtx.Err() != nil && errors.Is(err, runCtx.Err()):
		// The run context itself was cancelled. A timeout that expired
		// inside an action attempt stays on the failure path below.
		execution.AppendLog(models.LogLevelWarning, "", "Execution cancelled", nil)

		if execution.Finish(models.ExecutionStatusCancelled, nil) {
			e.publish(persistCtx, workflowID, events.ExecutionCancelled{
				BaseEvent:   events.NewBaseEvent(events.ExecutionCancelledEvent, workflowID),
				ExecutionID: execution.ID,
				DurationMs:  execution.ExecutionTime,
				Reason:      "context cancelled",
			})
		}

		logger.WarnContext(persistCtx, "Workflow execution cancelled", "duration_ms", execution.ExecutionTime)
	default:
		failedNode := execution.CurrentNodeID

		execution.AppendLog(models.LogLevelError, "", "Execution failed", map[string]any{
			"error": err.Error(),
		})

		if execution.Finish(models.ExecutionStatusFailed, &models.ExecutionResult{Success: false, Error: err.Error()}) {
			e.publish(persistCtx, workflowID, events.ExecutionFailed{
				BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, workflowID),
				ExecutionID:   execution.ID,
				Status:        string(execution.Status),
				DurationMs:    execution.ExecutionTime,
				NodesExecuted: len(execution.ExecutedNodes),
				FailedNode:    failedNode,
				Error:         err.Error(),
			})
		}

		tracing.SetError(span, err)
		logger.ErrorContext(persistCtx, "Workflow execution failed", "error", err)
	}

	if e.recorder != nil {
		if recErr := e.recorder.RecordExecution(persistCtx, workflowID, execution, rt.takeSamples()); recErr != nil {
			logger.ErrorContext(persistCtx, "Failed to record execution analytics", "error", recErr)
		}
	}

	if saveErr := e.store.SaveExecution(persistCtx, execution); saveErr != nil {
		logger.ErrorContext(persistCtx, "Failed to persist execution", "error", saveErr)
	}

	return execution
}

// CancelExecution stops a running execution. In-process executions are
// cancelled through their registered cancel function; executions found only
// in the store are marked cancelled directly. Cancelling an execution that
// already reached a terminal status returns ErrExecutionNotRunning.
func (e *Engine) CancelExecution(ctx context.Context, executionID, cancelledBy string) (*models.Execution, error) {
	e.mu.Lock()
	entry, ok := e.running[executionID]
	delete(e.running, executionID)
	e.mu.Unlock()

	if ok {
		execution := entry.execution
		execution.AppendLog(models.LogLevelWarning, "", "Execution cancelled", map[string]any{
			"cancelled_by": cancelledBy,
		})
		execution.Finish(models.ExecutionStatusCancelled, nil)
		entry.cancel()

		if err := e.store.SaveExecution(ctx, execution); err != nil {
			e.logger.ErrorContext(ctx, "Failed to persist cancelled execution",
				"execution_id", executionID, "error", err)
		}

		e.publish(ctx, execution.WorkflowID, events.ExecutionCancelled{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCancelledEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			DurationMs:  execution.ExecutionTime,
			CancelledBy: cancelledBy,
		})
		e.logger.InfoContext(ctx, "Execution cancelled",
			"execution_id", executionID, "cancelled_by", cancelledBy)

		return execution, nil
	}

	execution, err := e.store.ExecutionByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Status.Terminal() {
		return nil, fmt.Errorf("execution %s is %s: %w", executionID, execution.Status, ErrExecutionNotRunning)
	}

	// Not registered here but still running per the store: a stale record
	// from a crashed run. Mark it cancelled so it stops presenting as live.
	execution.AppendLog(models.LogLevelWarning, "", "Execution cancelled", map[string]any{
		"cancelled_by": cancelledBy,
	})
	execution.Finish(models.ExecutionStatusCancelled, nil)

	if err := e.store.SaveExecution(ctx, execution); err != nil {
		return nil, err
	}

	e.publish(ctx, execution.WorkflowID, events.ExecutionCancelled{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCancelledEvent, execution.WorkflowID),
		ExecutionID: execution.ID,
		DurationMs:  execution.ExecutionTime,
		CancelledBy: cancelledBy,
	})

	return execution, nil
}

// ActivateWorkflow validates a workflow and flips it to active. Activation is
// where graph shape, connection labels and node configurations are enforced;
// drafts can hold anything. Deprecated workflows cannot be reactivated.
func (e *Engine) ActivateWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.WorkflowStatusActive {
		return workflow, nil
	}

	if workflow.Status == models.WorkflowStatusDeprecated {
		return nil, &StateError{WorkflowID: workflowID, Status: workflow.Status}
	}

	if err := models.ValidateGraph(workflow); err != nil {
		return nil, NewDefinitionError(workflowID, "", err)
	}

	if err := validateNodeConfigs(workflow); err != nil {
		return nil, NewDefinitionError(workflowID, "", err)
	}

	workflow.Status = models.WorkflowStatusActive
	workflow.UpdatedAt = time.Now()

	if err := e.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Workflow activated", "workflow_id", workflowID, "name", workflow.Name)

	return workflow, nil
}

// DeactivateWorkflow pauses an active workflow. Paused workflows reject new
// executions but keep their definition intact for reactivation.
func (e *Engine) DeactivateWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.WorkflowStatusPaused {
		return workflow, nil
	}

	if workflow.Status != models.WorkflowStatusActive {
		return nil, &StateError{WorkflowID: workflowID, Status: workflow.Status}
	}

	workflow.Status = models.WorkflowStatusPaused
	workflow.UpdatedAt = time.Now()

	if err := e.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Workflow deactivated", "workflow_id", workflowID)

	return workflow, nil
}

// RunningExecutions returns the IDs of executions currently registered in
// this process.
func (e *Engine) RunningExecutions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.running))
	for id := range e.running {
		ids = append(ids, id)
	}

	return ids
}

func (e *Engine) track(execution *models.Execution, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.running[execution.ID] = &inflight{execution: execution, cancel: cancel}
}

func (e *Engine) untrack(executionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.running, executionID)
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", string(event.GetType()), "error", err)
	}
}
