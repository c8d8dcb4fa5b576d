package models

import (
	"errors"
	"fmt"
	"slices"
)

// Graph validation errors, surfaced at workflow creation and activation time
// so configuration mistakes fail early instead of mid-execution.
var (
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
	ErrNoNodes            = errors.New("workflow must have at least one node")
	ErrNoTriggerNode      = errors.New("workflow must have at least one trigger node")
	ErrDuplicateNodeID    = errors.New("duplicate node id")
	ErrUnknownNodeType    = errors.New("unknown node type")
	ErrDanglingConnection = errors.New("connection references unknown node")
	ErrInvalidCondition   = errors.New("condition label not meaningful for source node")
)

// ValidateGraph checks the structural invariants every workflow must satisfy
// before it can be activated: unique node ids, known node types, at least one
// trigger node, and connection endpoints that resolve within the workflow.
func ValidateGraph(w *Workflow) error {
	if w == nil {
		return ErrWorkflowNil
	}

	if len(w.Nodes) == 0 {
		return ErrNoNodes
	}

	known := NodeTypes()
	seen := make(map[string]bool, len(w.Nodes))
	hasTrigger := false

	for _, node := range w.Nodes {
		if seen[node.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		seen[node.ID] = true

		if !slices.Contains(known, node.Type) {
			return fmt.Errorf("%w: node %s has type %q", ErrUnknownNodeType, node.ID, node.Type)
		}

		if node.Type == NodeTypeTrigger {
			hasTrigger = true
		}
	}

	if !hasTrigger {
		return ErrNoTriggerNode
	}

	for _, conn := range w.Connections {
		if !seen[conn.SourceNodeID] {
			return fmt.Errorf("%w: connection %s source %s", ErrDanglingConnection, conn.ID, conn.SourceNodeID)
		}

		if !seen[conn.TargetNodeID] {
			return fmt.Errorf("%w: connection %s target %s", ErrDanglingConnection, conn.ID, conn.TargetNodeID)
		}
	}

	return ValidateConditionLabels(w)
}

// ValidateConditionLabels checks that every guarded connection's label is
// meaningful for the result shape its source node produces. Switch labels are
// free-form (matched against the resolved switch value), ai_decision labels
// are constrained only when the analysis type has a closed label set.
func ValidateConditionLabels(w *Workflow) error {
	for _, conn := range w.Connections {
		if !conn.Guarded() || conn.Condition == ConditionDefault {
			continue
		}

		source := w.FindNode(conn.SourceNodeID)
		if source == nil {
			return fmt.Errorf("%w: connection %s source %s", ErrDanglingConnection, conn.ID, conn.SourceNodeID)
		}

		valid := conditionLabelValid(source, conn.Condition)
		if !valid {
			return fmt.Errorf("%w: connection %s label %q on %s node %s",
				ErrInvalidCondition, conn.ID, conn.Condition, source.Type, source.ID)
		}
	}

	return nil
}

func conditionLabelValid(source *Node, label string) bool {
	switch source.Type {
	case NodeTypeCondition:
		return label == "true" || label == "false"
	case NodeTypeAIDecision:
		analysisType, _ := source.Config["analysisType"].(string)

		labels := AnalysisType(analysisType).KnownLabels()
		if labels == nil {
			return true
		}

		return label == ClassificationUncertain || slices.Contains(labels, label)
	case NodeTypeSwitch:
		return true
	default:
		return label == ClassificationSuccess || label == ClassificationFailure
	}
}
