package catalog

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestBuiltinTemplates_GraphsAreValid(t *testing.T) {
	for _, template := range BuiltinTemplates() {
		t.Run(template.ID, func(t *testing.T) {
			definition := template.Definition
			assert.NoError(t, models.ValidateGraph(&definition))
			assert.NotEmpty(t, definition.Triggers)
		})
	}
}

func TestCatalog_Templates_SeedsBuiltins(t *testing.T) {
	st := memory.NewStore()
	catalog := NewCatalog(st, testLogger())

	templates, err := catalog.Templates(t.Context())
	require.NoError(t, err)
	require.Len(t, templates, 3)

	ids := make([]string, 0, len(templates))
	for _, template := range templates {
		ids = append(ids, template.ID)
	}

	assert.Equal(t, []string{"tpl-scheduled-report", "tpl-sentiment-triage", "tpl-support-escalation"}, ids)
}

func TestCatalog_Templates_KeepsStoredTemplate(t *testing.T) {
	st := memory.NewStore()

	stored := supportEscalationTemplate()
	stored.Description = "customized by an operator"
	stored.UsageCount = 7
	require.NoError(t, st.SaveTemplate(t.Context(), stored))

	catalog := NewCatalog(st, testLogger())

	template, err := catalog.TemplateByID(t.Context(), "tpl-support-escalation")
	require.NoError(t, err)
	assert.Equal(t, "customized by an operator", template.Description)
	assert.Equal(t, 7, template.UsageCount)
}

func TestCatalog_Instantiate(t *testing.T) {
	st := memory.NewStore()
	catalog := NewCatalog(st, testLogger())

	workflow, err := catalog.Instantiate(t.Context(), "tpl-sentiment-triage", "user-1", Overrides{
		Name: "My Triage",
		Variables: map[string]any{
			"alertChannel": "my-alerts",
			"locale":       "de",
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, workflow.ID)
	assert.Equal(t, "My Triage", workflow.Name)
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
	assert.Equal(t, "user-1", workflow.Owner)
	assert.Equal(t, 1, workflow.Version)
	assert.Nil(t, workflow.Analytics)
	assert.False(t, workflow.CreatedAt.IsZero())

	for _, node := range workflow.Nodes {
		assert.Equal(t, models.NodeMetadata{}, node.Metadata, "node %s metadata not zeroed", node.ID)
	}

	variables := models.SeedVariables(workflow.Variables)
	assert.Equal(t, "my-alerts", variables["alertChannel"])
	assert.Equal(t, "de", variables["locale"])

	stored, err := st.WorkflowByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Triage", stored.Name)

	template, err := st.TemplateByID(t.Context(), "tpl-sentiment-triage")
	require.NoError(t, err)
	assert.Equal(t, 1, template.UsageCount)
}

func TestCatalog_Instantiate_TwiceYieldsIndependentWorkflows(t *testing.T) {
	st := memory.NewStore()
	catalog := NewCatalog(st, testLogger())

	first, err := catalog.Instantiate(t.Context(), "tpl-sentiment-triage", "user-1", Overrides{})
	require.NoError(t, err)

	second, err := catalog.Instantiate(t.Context(), "tpl-sentiment-triage", "user-2", Overrides{})
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)

	first.FindNode("classify").Config["threshold"] = 0.2

	assert.Equal(t, 0.75, second.FindNode("classify").Config["threshold"])

	template, err := st.TemplateByID(t.Context(), "tpl-sentiment-triage")
	require.NoError(t, err)
	assert.Equal(t, 0.75, template.Definition.FindNode("classify").Config["threshold"])
	assert.Equal(t, 2, template.UsageCount)
}

func TestCatalog_Instantiate_UnknownTemplate(t *testing.T) {
	catalog := NewCatalog(memory.NewStore(), testLogger())

	_, err := catalog.Instantiate(t.Context(), "tpl-missing", "user-1", Overrides{})
	require.Error(t, err)
	assert.True(t, store.IsTemplateNotFound(err))
}

func TestCatalog_SaveTemplate_AssignsID(t *testing.T) {
	st := memory.NewStore()
	catalog := NewCatalog(st, testLogger())

	template := &models.WorkflowTemplate{
		Name:     "Custom Flow",
		Category: "custom",
		Definition: models.Workflow{
			Name: "Custom Flow",
			Nodes: []*models.Node{
				{ID: "start", Type: models.NodeTypeTrigger, Config: map[string]any{"triggerType": "manual"}},
			},
		},
	}

	require.NoError(t, catalog.SaveTemplate(t.Context(), template))
	assert.NotEmpty(t, template.ID)

	fetched, err := st.TemplateByID(t.Context(), template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Custom Flow", fetched.Name)
}
