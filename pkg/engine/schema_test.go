package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/models"
)

func TestValidateNodeConfig(t *testing.T) {
	testCases := []struct {
		name    string
		node    *models.Node
		wantErr bool
	}{
		{
			name: "trigger with type",
			node: &models.Node{ID: "n1", Type: models.NodeTypeTrigger, Config: map[string]any{"triggerType": "new_message"}},
		},
		{
			name:    "trigger without type",
			node:    &models.Node{ID: "n1", Type: models.NodeTypeTrigger, Config: map[string]any{}},
			wantErr: true,
		},
		{
			name: "condition with known operator",
			node: &models.Node{ID: "n2", Type: models.NodeTypeCondition, Config: map[string]any{
				"field":    "order.total",
				"operator": "greater_than",
				"value":    100,
			}},
		},
		{
			name: "condition with unknown operator",
			node: &models.Node{ID: "n2", Type: models.NodeTypeCondition, Config: map[string]any{
				"field":    "order.total",
				"operator": "resembles",
			}},
			wantErr: true,
		},
		{
			name: "action with retry config",
			node: &models.Node{ID: "n3", Type: models.NodeTypeAction, Config: map[string]any{
				"actionType": "send_message",
				"message":    "hi",
				"timeout":    5000,
				"retryConfig": map[string]any{
					"maxRetries":    3,
					"retryDelay":    1000,
					"backoffFactor": 2.0,
				},
			}},
		},
		{
			name: "action with templated timeout",
			node: &models.Node{ID: "n3", Type: models.NodeTypeAction, Config: map[string]any{
				"actionType": "call_api",
				"url":        "https://api.example.com",
				"timeout":    "{{settings.timeout}}",
			}},
		},
		{
			name:    "action without action type",
			node:    &models.Node{ID: "n3", Type: models.NodeTypeAction, Config: map[string]any{"message": "hi"}},
			wantErr: true,
		},
		{
			name: "action with unregistered action type",
			node: &models.Node{ID: "n3", Type: models.NodeTypeAction, Config: map[string]any{
				"actionType": "teleport_user",
			}},
			wantErr: true,
		},
		{
			name: "delay fixed",
			node: &models.Node{ID: "n4", Type: models.NodeTypeDelay, Config: map[string]any{
				"delayType": "fixed_delay",
				"duration":  2500,
			}},
		},
		{
			name: "delay unknown type",
			node: &models.Node{ID: "n4", Type: models.NodeTypeDelay, Config: map[string]any{
				"delayType": "quantum_delay",
			}},
			wantErr: true,
		},
		{
			name: "switch with value",
			node: &models.Node{ID: "n5", Type: models.NodeTypeSwitch, Config: map[string]any{
				"switchValue": "{{user.tier}}",
			}},
		},
		{
			name:    "switch without value",
			node:    &models.Node{ID: "n5", Type: models.NodeTypeSwitch, Config: map[string]any{}},
			wantErr: true,
		},
		{
			name: "ai decision sentiment",
			node: &models.Node{ID: "n6", Type: models.NodeTypeAIDecision, Config: map[string]any{
				"analysisType": "sentiment",
				"threshold":    0.7,
			}},
		},
		{
			name: "ai decision unknown analysis",
			node: &models.Node{ID: "n6", Type: models.NodeTypeAIDecision, Config: map[string]any{
				"analysisType": "mind_reading",
			}},
			wantErr: true,
		},
		{
			name: "ai decision threshold out of range",
			node: &models.Node{ID: "n6", Type: models.NodeTypeAIDecision, Config: map[string]any{
				"analysisType": "sentiment",
				"threshold":    1.5,
			}},
			wantErr: true,
		},
		{
			name: "loop with guard",
			node: &models.Node{ID: "n7", Type: models.NodeTypeLoop, Config: map[string]any{
				"iterations": 3,
				"condition": map[string]any{
					"field":    "retries.allowed",
					"operator": "equals",
					"value":    true,
				},
			}},
		},
		{
			name: "parallel accepts anything",
			node: &models.Node{ID: "n8", Type: models.NodeTypeParallel, Config: map[string]any{"whatever": 1}},
		},
		{
			name: "nil config only fails when fields are required",
			node: &models.Node{ID: "n9", Type: models.NodeTypeLoop},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := validateNodeConfig(testCase.node)
			if testCase.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.node.ID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNodeConfigs_ReportsFirstOffender(t *testing.T) {
	workflow := &models.Workflow{
		ID: "wf-schema",
		Nodes: []*models.Node{
			{ID: "ok", Type: models.NodeTypeTrigger, Config: map[string]any{"triggerType": "new_message"}},
			{ID: "bad", Type: models.NodeTypeSwitch, Config: map[string]any{}},
		},
	}

	err := validateNodeConfigs(workflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
