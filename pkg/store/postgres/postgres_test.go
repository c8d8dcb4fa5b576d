package postgres_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
	"github.com/weftlabs/weft/pkg/store/postgres"
)

// setupTestStore connects to the database named by WEFT_TEST_DATABASE_URL and
// skips the test when none is configured.
func setupTestStore(t *testing.T) *postgres.Store {
	t.Helper()

	databaseURL := os.Getenv("WEFT_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("WEFT_TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := postgres.NewStore(t.Context(), logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close(t.Context())
	})

	return s
}

func TestStore_WorkflowLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	workflow := &models.Workflow{
		ID:     "pg-test-wf",
		Name:   "Postgres Round Trip",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeTrigger, Config: map[string]any{"triggerType": "new_message"}},
		},
	}

	require.NoError(t, s.SaveWorkflow(ctx, workflow))

	t.Cleanup(func() {
		_ = s.DeleteWorkflow(ctx, workflow.ID)
	})

	stored, err := s.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Postgres Round Trip", stored.Name)
	assert.Equal(t, models.NodeTypeTrigger, stored.Nodes[0].Type)

	workflow.Version = 2
	require.NoError(t, s.SaveWorkflow(ctx, workflow))

	stored, err = s.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)

	require.NoError(t, s.DeleteWorkflow(ctx, workflow.ID))

	_, err = s.WorkflowByID(ctx, workflow.ID)
	assert.True(t, store.IsWorkflowNotFound(err))

	err = s.DeleteWorkflow(ctx, workflow.ID)
	assert.True(t, store.IsWorkflowNotFound(err))
}

func TestStore_ExecutionsByWorkflow(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	workflow := &models.Workflow{ID: "pg-test-exec-wf", Name: "Execution Host", Status: models.WorkflowStatusActive}
	execution := models.NewExecution(workflow, nil, models.TriggeredBy{Type: models.TriggerSourceAPI})
	execution.Finish(models.ExecutionStatusCompleted, &models.ExecutionResult{Success: true})

	require.NoError(t, s.SaveExecution(ctx, execution))

	mine, err := s.ExecutionsByWorkflow(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotEmpty(t, mine)
	assert.Equal(t, execution.ID, mine[0].ID)

	none, err := s.ExecutionsByWorkflow(ctx, "pg-test-no-such-wf")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_HealthCheck(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.HealthCheck(t.Context()))
}
