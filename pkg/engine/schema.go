package engine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/conditions"
	"github.com/weftlabs/weft/pkg/models"
)

// nodeConfigSchemas holds the JSON schema each node type's configuration must
// satisfy before a workflow can be activated. Types without an entry accept
// any configuration.
var nodeConfigSchemas = buildNodeConfigSchemas()

func buildNodeConfigSchemas() map[models.NodeType]map[string]any {
	return map[models.NodeType]map[string]any{
		models.NodeTypeTrigger: {
			"type": "object",
			"properties": map[string]any{
				"triggerType": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []any{"triggerType"},
		},
		models.NodeTypeCondition: conditionSchema(),
		models.NodeTypeAction: {
			"type": "object",
			"properties": map[string]any{
				"actionType": map[string]any{"type": "string", "enum": actionTypeNames()},
				"timeout":    numberOrPlaceholder(),
				"retryConfig": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"maxRetries":    numberOrPlaceholder(),
						"retryDelay":    numberOrPlaceholder(),
						"backoffFactor": numberOrPlaceholder(),
					},
				},
			},
			"required": []any{"actionType"},
		},
		models.NodeTypeDelay: {
			"type": "object",
			"properties": map[string]any{
				"delayType": map[string]any{"type": "string", "enum": []any{"fixed_delay", "wait_for_message"}},
				"duration":  numberOrPlaceholder(),
				"timeout":   numberOrPlaceholder(),
			},
			"required": []any{"delayType"},
		},
		models.NodeTypeLoop: {
			"type": "object",
			"properties": map[string]any{
				"iterations": numberOrPlaceholder(),
				"condition":  conditionSchema(),
			},
		},
		models.NodeTypeSwitch: {
			"type": "object",
			"properties": map[string]any{
				"switchValue": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []any{"switchValue"},
		},
		models.NodeTypeAIDecision: {
			"type": "object",
			"properties": map[string]any{
				"analysisType": map[string]any{"type": "string", "enum": []any{
					string(models.AnalysisSentiment),
					string(models.AnalysisContentModeration),
					string(models.AnalysisIntentDetection),
				}},
				"threshold": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"input":     map[string]any{"type": "string"},
			},
			"required": []any{"analysisType"},
		},
	}
}

// conditionSchema is shared by condition nodes and loop guards.
func conditionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field":         map[string]any{"type": "string", "minLength": 1},
			"operator":      map[string]any{"type": "string", "enum": operatorNames()},
			"caseSensitive": map[string]any{"type": "boolean"},
		},
		"required": []any{"field", "operator"},
	}
}

// numberOrPlaceholder admits a literal number or a template placeholder that
// resolves to one at run time.
func numberOrPlaceholder() map[string]any {
	return map[string]any{"type": []any{"number", "string"}}
}

func operatorNames() []any {
	operators := conditions.Operators()

	names := make([]any, 0, len(operators))
	for _, operator := range operators {
		names = append(names, string(operator))
	}

	return names
}

func actionTypeNames() []any {
	types := actions.Types()

	names := make([]any, 0, len(types))
	for _, actionType := range types {
		names = append(names, string(actionType))
	}

	return names
}

// validateNodeConfig checks one node's configuration against its type schema.
func validateNodeConfig(node *models.Node) error {
	schema, ok := nodeConfigSchemas[node.Type]
	if !ok {
		return nil
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("node %s configuration invalid: %s", node.ID, strings.Join(details, "; "))
	}

	return nil
}

// validateNodeConfigs checks every node configuration in the workflow.
func validateNodeConfigs(workflow *models.Workflow) error {
	for _, node := range workflow.Nodes {
		if err := validateNodeConfig(node); err != nil {
			return err
		}
	}

	return nil
}
