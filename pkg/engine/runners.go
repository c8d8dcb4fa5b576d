package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/conditions"
	"github.com/weftlabs/weft/pkg/interpolate"
	"github.com/weftlabs/weft/pkg/models"
)

func (e *Engine) runTrigger(_ context.Context, rt *runState, _ *models.Node, _ *visitSet) (nodeResult, error) {
	output := map[string]any{"triggered": true}
	if len(rt.execution.Context) > 0 {
		output["context"] = rt.execution.Context
	}

	return nodeResult{Output: output}, nil
}

func (e *Engine) runCondition(_ context.Context, rt *runState, node *models.Node, _ *visitSet) (nodeResult, error) {
	scope := rt.scope()
	config := interpolate.RenderConfig(node.Config, scope)

	met, fieldValue, err := evaluateConditionConfig(config, scope)
	if err != nil {
		return nodeResult{}, &ConditionEvaluationError{NodeID: node.ID, Err: err}
	}

	output := map[string]any{
		"conditionMet": met,
		"value":        fieldValue,
	}

	return nodeResult{Output: output, Classification: strconv.FormatBool(met)}, nil
}

func (e *Engine) runAction(ctx context.Context, rt *runState, node *models.Node, _ *visitSet) (nodeResult, error) {
	actionType, _ := node.Config["actionType"].(string)
	if actionType == "" {
		return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID,
			fmt.Errorf("action node has no actionType: %w", actions.ErrInvalidActionConfig))
	}

	result, err := e.dispatcher.Execute(ctx, actionType, node.Config, rt.execution, rt.nodeResults())
	if err != nil {
		if errors.Is(err, actions.ErrUnknownActionType) {
			return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID, err)
		}

		return nodeResult{}, err
	}

	classification := result.Classification
	if classification == "" {
		classification = models.ClassificationSuccess
		if !result.Success {
			classification = models.ClassificationFailure
		}
	}

	return nodeResult{Output: result.Output, Classification: classification}, nil
}

// runDelay pauses the branch. wait_for_message currently sleeps out its
// timeout instead of parking on an inbound message subscription, so it always
// resolves with message_received false.
func (e *Engine) runDelay(ctx context.Context, rt *runState, node *models.Node, _ *visitSet) (nodeResult, error) {
	config := interpolate.RenderConfig(node.Config, rt.scope())

	delayType, _ := config["delayType"].(string)
	if delayType == "" {
		delayType = "fixed_delay"
	}

	var wait time.Duration

	output := map[string]any{"delayed": true}

	switch delayType {
	case "fixed_delay":
		wait = millisField(config, "duration")
		output["duration_ms"] = wait.Milliseconds()
	case "wait_for_message":
		wait = millisField(config, "timeout")
		output["message_received"] = false
		output["waited_ms"] = wait.Milliseconds()
	default:
		return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID, fmt.Errorf("unknown delay type %q", delayType))
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nodeResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	return nodeResult{Output: output}, nil
}

func (e *Engine) runAIDecision(ctx context.Context, rt *runState, node *models.Node, _ *visitSet) (nodeResult, error) {
	if e.classifier == nil {
		return nodeResult{}, fmt.Errorf("ai_decision: %w", actions.ErrCollaboratorNotConfigured)
	}

	config := interpolate.RenderConfig(node.Config, rt.scope())

	analysisType := models.AnalysisType(stringField(config, "analysisType"))
	if analysisType == "" {
		analysisType = models.AnalysisSentiment
	}

	input := stringField(config, "input")
	if input == "" {
		input, _ = rt.execution.Context["message"].(string)
	}

	verdict, err := e.classifier.Classify(ctx, input, analysisType)
	if err != nil {
		return nodeResult{}, fmt.Errorf("classify %s: %w", analysisType, err)
	}

	label := verdict.Label

	threshold, _ := floatValue(config["threshold"])
	if threshold > 0 && verdict.Confidence < threshold {
		label = models.ClassificationUncertain
	}

	output := map[string]any{
		"classification": label,
		"confidence":     verdict.Confidence,
		"analysisType":   string(analysisType),
	}

	return nodeResult{Output: output, Classification: label}, nil
}

// runParallel launches every outgoing connection's target concurrently and
// waits for all of them. The first error in declaration order wins; sibling
// branches still run to completion before it propagates.
func (e *Engine) runParallel(ctx context.Context, rt *runState, node *models.Node, visit *visitSet) (nodeResult, error) {
	connections := rt.workflow.OutgoingConnections(node.ID)

	targets := make([]*models.Node, 0, len(connections))

	for _, connection := range connections {
		if !visit.mark(connection.ID) {
			continue
		}

		target := rt.workflow.FindNode(connection.TargetNodeID)
		if target == nil {
			return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID,
				fmt.Errorf("%w: connection %s targets %s", models.ErrDanglingConnection, connection.ID, connection.TargetNodeID))
		}

		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nodeResult{Output: map[string]any{"parallelResults": []any{}, "branches": 0}, Routed: true}, nil
	}

	branchErrs := make([]error, len(targets))

	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)

		go func() {
			defer wg.Done()

			branchErrs[i] = e.runNode(ctx, rt, target, visit)
		}()
	}

	wg.Wait()

	for _, err := range branchErrs {
		if err != nil {
			return nodeResult{}, err
		}
	}

	results := make([]any, 0, len(targets))
	for _, target := range targets {
		results = append(results, rt.resultFor(target.ID))
	}

	output := map[string]any{
		"parallelResults": results,
		"branches":        len(targets),
	}

	return nodeResult{Output: output, Routed: true}, nil
}

// runLoop repeats its downstream subgraph up to the configured iteration
// count, re-checking the optional guard condition before every pass. Each
// pass routes through every outgoing connection in declaration order with a
// fresh connection scope, so the body re-runs instead of tripping the cycle
// guard.
func (e *Engine) runLoop(ctx context.Context, rt *runState, node *models.Node, _ *visitSet) (nodeResult, error) {
	config := interpolate.RenderConfig(node.Config, rt.scope())

	maxIterations := 1

	if raw, exists := config["iterations"]; exists {
		if value, ok := floatValue(raw); ok {
			maxIterations = max(int(value), 0)
		}
	}

	connections := rt.workflow.OutgoingConnections(node.ID)

	loopResults := make([]any, 0, maxIterations)
	iterations := 0

	for range maxIterations {
		if err := ctx.Err(); err != nil {
			return nodeResult{}, err
		}

		if guard, ok := node.Config["condition"].(map[string]any); ok {
			scope := rt.scope()

			met, _, err := evaluateConditionConfig(interpolate.RenderConfig(guard, scope), scope)
			if err != nil {
				return nodeResult{}, &ConditionEvaluationError{NodeID: node.ID, Err: err}
			}

			if !met {
				break
			}
		}

		iterationVisit := newVisitSet()
		iterationResults := make(map[string]any, len(connections))

		for _, connection := range connections {
			target := rt.workflow.FindNode(connection.TargetNodeID)
			if target == nil {
				return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID,
					fmt.Errorf("%w: connection %s targets %s", models.ErrDanglingConnection, connection.ID, connection.TargetNodeID))
			}

			if err := e.runNode(ctx, rt, target, iterationVisit); err != nil {
				return nodeResult{}, err
			}

			iterationResults[target.ID] = rt.resultFor(target.ID)
		}

		loopResults = append(loopResults, iterationResults)
		iterations++
	}

	output := map[string]any{
		"loopResults": loopResults,
		"iterations":  iterations,
	}

	return nodeResult{Output: output, Routed: true}, nil
}

// runSwitch resolves switchValue against the scope and routes to the first
// connection whose label equals it, falling back to the first "default"
// connection. At most one target runs.
func (e *Engine) runSwitch(ctx context.Context, rt *runState, node *models.Node, visit *visitSet) (nodeResult, error) {
	config := interpolate.RenderConfig(node.Config, rt.scope())
	value := stringify(config["switchValue"])

	connections := rt.workflow.OutgoingConnections(node.ID)

	var chosen *models.Connection

	for _, connection := range connections {
		if connection.Guarded() && connection.Condition != models.ConditionDefault && connection.Condition == value {
			chosen = connection

			break
		}
	}

	if chosen == nil {
		for _, connection := range connections {
			if connection.Condition == models.ConditionDefault {
				chosen = connection

				break
			}
		}
	}

	output := map[string]any{"switchValue": value}

	if chosen == nil {
		output["matched"] = false

		return nodeResult{Output: output, Routed: true}, nil
	}

	output["matched"] = true

	visit.mark(chosen.ID)

	target := rt.workflow.FindNode(chosen.TargetNodeID)
	if target == nil {
		return nodeResult{}, NewDefinitionError(rt.workflow.ID, node.ID,
			fmt.Errorf("%w: connection %s targets %s", models.ErrDanglingConnection, chosen.ID, chosen.TargetNodeID))
	}

	if err := e.runNode(ctx, rt, target, visit); err != nil {
		return nodeResult{}, err
	}

	return nodeResult{Output: output, Routed: true}, nil
}

// evaluateConditionConfig resolves the field path against the scope and
// applies the operator. Shared by condition nodes and loop guards.
func evaluateConditionConfig(config map[string]any, scope map[string]any) (bool, any, error) {
	operatorName, _ := config["operator"].(string)

	operator, err := conditions.ParseOperator(operatorName)
	if err != nil {
		return false, nil, err
	}

	fieldPath, _ := config["field"].(string)
	fieldValue, _ := interpolate.Lookup(scope, fieldPath)
	caseSensitive, _ := config["caseSensitive"].(bool)

	met, err := conditions.Evaluate(fieldValue, operator, config["value"], caseSensitive)
	if err != nil {
		return false, fieldValue, err
	}

	return met, fieldValue, nil
}

func stringField(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}

func floatValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}

func millisField(config map[string]any, key string) time.Duration {
	value, ok := floatValue(config[key])
	if !ok || value <= 0 {
		return 0
	}

	return time.Duration(value * float64(time.Millisecond))
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
