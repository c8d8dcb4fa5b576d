package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/weftlabs/weft/pkg/analytics"
	"github.com/weftlabs/weft/pkg/events"
	"github.com/weftlabs/weft/pkg/interpolate"
	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/tracing"
)

// nodeResult is what a node runner hands back to the traversal envelope.
// Routed runners (parallel, loop, switch) dispatch their own downstream nodes
// and suppress the default connection following.
type nodeResult struct {
	Output         map[string]any
	Classification string
	Routed         bool
}

// runner executes one node type. Runners are registered per NodeType when the
// engine is constructed.
type runner func(ctx context.Context, rt *runState, node *models.Node, visit *visitSet) (nodeResult, error)

// runState is the mutable state of one traversal: node outputs keyed by node
// ID, the node timing samples collected for analytics, and the output of the
// node that completed last. Parallel branches share one runState, so all
// access goes through the mutex.
type runState struct {
	workflow  *models.Workflow
	execution *models.Execution

	mu         sync.Mutex
	results    map[string]any
	samples    []analytics.NodeSample
	lastOutput map[string]any
}

func newRunState(workflow *models.Workflow, execution *models.Execution) *runState {
	return &runState{
		workflow:  workflow,
		execution: execution,
		results:   make(map[string]any),
	}
}

// scope assembles the interpolation scope from the execution context, the
// current variable snapshot and the node outputs produced so far.
func (rt *runState) scope() map[string]any {
	return interpolate.Scope(rt.execution.Context, rt.execution.VariableSnapshot(), rt.nodeResults())
}

func (rt *runState) nodeResults() map[string]any {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	results := make(map[string]any, len(rt.results))
	for nodeID, output := range rt.results {
		results[nodeID] = output
	}

	return results
}

func (rt *runState) setResult(nodeID string, output map[string]any) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.results[nodeID] = output
	rt.lastOutput = output
}

func (rt *runState) resultFor(nodeID string) any {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.results[nodeID]
}

func (rt *runState) finalOutput() map[string]any {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.lastOutput
}

func (rt *runState) addSample(sample analytics.NodeSample) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.samples = append(rt.samples, sample)
}

func (rt *runState) takeSamples() []analytics.NodeSample {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	samples := rt.samples
	rt.samples = nil

	return samples
}

// visitSet tracks which connections have fired within one routing scope. A
// connection fires at most once per scope, which is what stops cycles from
// spinning; loop nodes open a fresh scope per iteration.
type visitSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newVisitSet() *visitSet {
	return &visitSet{seen: make(map[string]bool)}
}

// mark reports whether this is the connection's first visit in the scope.
func (v *visitSet) mark(connectionID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seen[connectionID] {
		return false
	}

	v.seen[connectionID] = true

	return true
}

// runNode is the envelope around every node execution: bookkeeping, the node
// log pair, events, tracing, the timing sample, and connection following for
// runners that don't route themselves.
func (e *Engine) runNode(ctx context.Context, rt *runState, node *models.Node, visit *visitSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	run, ok := e.runners[node.Type]
	if !ok {
		return NewDefinitionError(rt.workflow.ID, node.ID, fmt.Errorf("%w: %q", models.ErrUnknownNodeType, node.Type))
	}

	rt.execution.RecordNode(node.ID)
	rt.execution.AppendLog(models.LogLevelInfo, node.ID, "Node started", map[string]any{
		"node_type": string(node.Type),
	})
	e.publish(ctx, rt.workflow.ID, events.NodeStarted{
		BaseEvent:   events.NewBaseEvent(events.NodeStartedEvent, rt.workflow.ID),
		ExecutionID: rt.execution.ID,
		NodeID:      node.ID,
		NodeType:    node.Type,
	})

	nodeCtx, span := tracing.StartSpan(ctx, e.tracer, "engine.run_node",
		attribute.String(tracing.WorkflowIDKey, rt.workflow.ID),
		attribute.String(tracing.ExecutionIDKey, rt.execution.ID),
		attribute.String(tracing.NodeIDKey, node.ID),
		attribute.String(tracing.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	startedAt := time.Now()
	result, err := run(nodeCtx, rt, node, visit)
	elapsed := time.Since(startedAt)

	if err != nil {
		// Interrupted attempts are not node failures. The terminal status
		// is decided by whoever cancelled the execution.
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}

		rt.addSample(analytics.NodeSample{
			NodeID:     node.ID,
			DurationMs: float64(elapsed.Milliseconds()),
			At:         time.Now(),
			Failed:     true,
		})
		tracing.SetError(span, err)
		rt.execution.AppendLog(models.LogLevelError, node.ID, "Node failed", map[string]any{
			"error": err.Error(),
		})
		e.publish(ctx, rt.workflow.ID, events.NodeFailed{
			BaseEvent:   events.NewBaseEvent(events.NodeFailedEvent, rt.workflow.ID),
			ExecutionID: rt.execution.ID,
			NodeID:      node.ID,
			DurationMs:  elapsed.Milliseconds(),
			Error:       err.Error(),
		})

		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	rt.addSample(analytics.NodeSample{
		NodeID:     node.ID,
		DurationMs: float64(elapsed.Milliseconds()),
		At:         time.Now(),
	})

	classification := result.Classification
	if classification == "" {
		classification = models.ClassificationSuccess
	}

	rt.setResult(node.ID, result.Output)
	rt.execution.AppendLog(models.LogLevelInfo, node.ID, "Node completed", map[string]any{
		"classification": classification,
		"duration_ms":    elapsed.Milliseconds(),
	})
	e.publish(ctx, rt.workflow.ID, events.NodeCompleted{
		BaseEvent:   events.NewBaseEvent(events.NodeCompletedEvent, rt.workflow.ID),
		ExecutionID: rt.execution.ID,
		NodeID:      node.ID,
		Label:       classification,
		DurationMs:  elapsed.Milliseconds(),
		Output:      result.Output,
	})

	if result.Routed {
		return nil
	}

	return e.followConnections(nodeCtx, rt, node, classification, visit)
}

// followConnections fires the node's outgoing connections that match the
// classification, running each target sequentially in declaration order.
func (e *Engine) followConnections(ctx context.Context, rt *runState, node *models.Node, classification string, visit *visitSet) error {
	for _, connection := range matchConnections(rt.workflow.OutgoingConnections(node.ID), classification) {
		if !visit.mark(connection.ID) {
			continue
		}

		target := rt.workflow.FindNode(connection.TargetNodeID)
		if target == nil {
			return NewDefinitionError(rt.workflow.ID, node.ID,
				fmt.Errorf("%w: connection %s targets %s", models.ErrDanglingConnection, connection.ID, connection.TargetNodeID))
		}

		if err := e.runNode(ctx, rt, target, visit); err != nil {
			return err
		}
	}

	return nil
}

// matchConnections selects the connections a classification fires:
// unconditional connections always fire, guarded connections fire on an exact
// label match, and "default" connections fire only when no guarded sibling
// matched.
func matchConnections(connections []*models.Connection, classification string) []*models.Connection {
	fired := make([]*models.Connection, 0, len(connections))
	defaults := make([]*models.Connection, 0, 1)
	matched := false

	for _, connection := range connections {
		switch {
		case !connection.Guarded():
			fired = append(fired, connection)
		case connection.Condition == models.ConditionDefault:
			defaults = append(defaults, connection)
		case connection.Condition == classification:
			fired = append(fired, connection)
			matched = true
		}
	}

	if !matched {
		fired = append(fired, defaults...)
	}

	return fired
}
