package catalog

import "github.com/weftlabs/weft/pkg/models"

// BuiltinTemplates returns the templates shipped with the engine. Each call
// builds fresh values so callers can mutate their copy freely.
func BuiltinTemplates() []*models.WorkflowTemplate {
	return []*models.WorkflowTemplate{
		supportEscalationTemplate(),
		sentimentTriageTemplate(),
		scheduledReportTemplate(),
	}
}

func supportEscalationTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:          "tpl-support-escalation",
		Name:        "Support Escalation",
		Description: "Routes urgent customer messages straight to a human, files a follow-up task for the rest.",
		Category:    "support",
		Tags:        []string{"support", "escalation"},
		Difficulty:  "beginner",
		Author:      "weft",
		Definition: models.Workflow{
			Name:        "Support Escalation",
			Description: "Escalate urgent messages, queue the rest",
			Category:    "support",
			Nodes: []*models.Node{
				{
					ID:     "start",
					Type:   models.NodeTypeTrigger,
					Name:   "Incoming message",
					Config: map[string]any{"triggerType": "new_message"},
				},
				{
					ID:   "urgency",
					Type: models.NodeTypeCondition,
					Name: "Urgent?",
					Config: map[string]any{
						"field":         "message",
						"operator":      "contains",
						"value":         "urgent",
						"caseSensitive": false,
					},
				},
				{
					ID:   "escalate",
					Type: models.NodeTypeAction,
					Name: "Escalate to human",
					Config: map[string]any{
						"actionType": "escalate_to_human",
						"reason":     "Urgent customer message",
						"details":    "{{message}}",
						"channel":    "support-escalations",
						"priority":   "high",
					},
				},
				{
					ID:   "ticket",
					Type: models.NodeTypeAction,
					Name: "Queue follow-up",
					Config: map[string]any{
						"actionType": "create_task",
						"title":      "Follow up with {{user.id}}",
						"priority":   "medium",
						"tags":       []any{"support"},
					},
				},
			},
			Connections: []*models.Connection{
				{ID: "c1", SourceNodeID: "start", TargetNodeID: "urgency"},
				{ID: "c2", SourceNodeID: "urgency", TargetNodeID: "escalate", Condition: "true"},
				{ID: "c3", SourceNodeID: "urgency", TargetNodeID: "ticket", Condition: "false"},
			},
			Triggers: []*models.Trigger{
				{
					ID:      "t-urgent",
					Type:    models.TriggerTypeKeyword,
					Config:  map[string]any{"keywords": []any{"urgent", "help"}},
					Enabled: true,
				},
			},
		},
	}
}

func sentimentTriageTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:          "tpl-sentiment-triage",
		Name:        "Sentiment Triage",
		Description: "Classifies inbound message sentiment, alerts on negatives and flags low-confidence calls for review.",
		Category:    "customer-experience",
		Tags:        []string{"ai", "sentiment"},
		Difficulty:  "intermediate",
		Author:      "weft",
		Definition: models.Workflow{
			Name:        "Sentiment Triage",
			Description: "Alert on negative sentiment, thank everyone else",
			Category:    "customer-experience",
			Variables: []*models.Variable{
				{Name: "alertChannel", Value: "cx-alerts", Type: "string"},
			},
			Nodes: []*models.Node{
				{
					ID:     "start",
					Type:   models.NodeTypeTrigger,
					Name:   "Incoming message",
					Config: map[string]any{"triggerType": "new_message"},
				},
				{
					ID:   "classify",
					Type: models.NodeTypeAIDecision,
					Name: "Classify sentiment",
					Config: map[string]any{
						"analysisType": "sentiment",
						"threshold":    0.75,
						"input":        "{{message}}",
					},
				},
				{
					ID:   "alert",
					Type: models.NodeTypeAction,
					Name: "Alert the team",
					Config: map[string]any{
						"actionType": "send_notification",
						"channel":    "{{variables.alertChannel}}",
						"subject":    "Negative sentiment detected",
						"message":    "Customer {{user.id}} wrote: {{message}}",
						"priority":   "high",
					},
				},
				{
					ID:   "review",
					Type: models.NodeTypeAction,
					Name: "Flag for review",
					Config: map[string]any{
						"actionType": "create_task",
						"title":      "Review conversation with {{user.id}}",
						"priority":   "low",
					},
				},
				{
					ID:   "thanks",
					Type: models.NodeTypeAction,
					Name: "Thank the customer",
					Config: map[string]any{
						"actionType": "send_message",
						"recipient":  "{{user.id}}",
						"message":    "Thanks for reaching out!",
					},
				},
			},
			Connections: []*models.Connection{
				{ID: "c1", SourceNodeID: "start", TargetNodeID: "classify"},
				{ID: "c2", SourceNodeID: "classify", TargetNodeID: "alert", Condition: "negative"},
				{ID: "c3", SourceNodeID: "classify", TargetNodeID: "review", Condition: "uncertain"},
				{ID: "c4", SourceNodeID: "classify", TargetNodeID: "thanks", Condition: "default"},
			},
			Triggers: []*models.Trigger{
				{ID: "t-message", Type: models.TriggerTypeMessage, Enabled: true},
			},
		},
	}
}

func scheduledReportTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:          "tpl-scheduled-report",
		Name:        "Scheduled Activity Report",
		Description: "Exports a daily activity report and posts where it landed.",
		Category:    "reporting",
		Tags:        []string{"reporting", "schedule"},
		Difficulty:  "beginner",
		Author:      "weft",
		Definition: models.Workflow{
			Name:        "Scheduled Activity Report",
			Description: "Daily CSV export with a notification",
			Category:    "reporting",
			Schedule: &models.Schedule{
				Enabled:  true,
				Type:     models.ScheduleTypeInterval,
				Interval: 24 * 60 * 60 * 1000,
			},
			Nodes: []*models.Node{
				{
					ID:     "start",
					Type:   models.NodeTypeTrigger,
					Name:   "Daily tick",
					Config: map[string]any{"triggerType": "schedule"},
				},
				{
					ID:   "export",
					Type: models.NodeTypeAction,
					Name: "Export report",
					Config: map[string]any{
						"actionType":  "data_export",
						"format":      "csv",
						"destination": "reports/daily",
					},
				},
				{
					ID:   "notify",
					Type: models.NodeTypeAction,
					Name: "Post location",
					Config: map[string]any{
						"actionType": "send_notification",
						"channel":    "reports",
						"message":    "Daily report ready at {{nodes.export.location}}",
					},
				},
			},
			Connections: []*models.Connection{
				{ID: "c1", SourceNodeID: "start", TargetNodeID: "export"},
				{ID: "c2", SourceNodeID: "export", TargetNodeID: "notify", Condition: "success"},
			},
			Triggers: []*models.Trigger{
				{ID: "t-schedule", Type: models.TriggerTypeSchedule, Enabled: true},
			},
		},
	}
}
