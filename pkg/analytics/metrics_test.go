package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store/memory"
)

func TestFleetMetrics_Empty(t *testing.T) {
	recorder := NewRecorder(memory.NewStore(), testLogger())

	metrics, err := recorder.FleetMetrics(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 0, metrics.TotalWorkflows)
	assert.Equal(t, 0, metrics.TotalExecutions)
	assert.Zero(t, metrics.SuccessRate)
	assert.Empty(t, metrics.TopWorkflows)
	assert.Empty(t, metrics.ExecutionTrend)
}

func TestFleetMetrics_Aggregates(t *testing.T) {
	st := memory.NewStore()
	lastRun := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	first := &models.Workflow{
		ID:     "wf-a",
		Name:   "Support Triage",
		Status: models.WorkflowStatusActive,
		Analytics: &models.WorkflowAnalytics{
			TotalExecutions:      10,
			SuccessfulExecutions: 9,
			FailedExecutions:     1,
			AverageExecutionTime: 100,
			LastExecuted:         &lastRun,
			ExecutionHistory: []*models.DailyStats{
				{Date: "2025-03-10", Executions: 10, Successes: 9, Failures: 1, AverageTime: 100},
			},
			NodePerformance: map[string]*models.NodeMetadata{},
		},
	}
	second := &models.Workflow{
		ID:     "wf-b",
		Name:   "Order Follow-up",
		Status: models.WorkflowStatusDraft,
		Analytics: &models.WorkflowAnalytics{
			TotalExecutions:      30,
			SuccessfulExecutions: 15,
			FailedExecutions:     15,
			AverageExecutionTime: 200,
			ExecutionHistory: []*models.DailyStats{
				{Date: "2025-03-10", Executions: 20, Successes: 10, Failures: 10, AverageTime: 250},
				{Date: "2025-03-09", Executions: 10, Successes: 5, Failures: 5, AverageTime: 100},
			},
			NodePerformance: map[string]*models.NodeMetadata{},
		},
	}
	third := &models.Workflow{ID: "wf-c", Name: "Idle", Status: models.WorkflowStatusActive}

	for _, workflow := range []*models.Workflow{first, second, third} {
		require.NoError(t, st.SaveWorkflow(t.Context(), workflow))
	}

	recorder := NewRecorder(st, testLogger())

	metrics, err := recorder.FleetMetrics(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.TotalWorkflows)
	assert.Equal(t, 2, metrics.ActiveWorkflows)
	assert.Equal(t, 40, metrics.TotalExecutions)
	assert.Equal(t, 24, metrics.SuccessfulExecutions)
	assert.Equal(t, 16, metrics.FailedExecutions)
	assert.InDelta(t, 0.6, metrics.SuccessRate, 0.001)
	assert.InDelta(t, 175, metrics.AverageExecutionTime, 0.001)

	require.Len(t, metrics.TopWorkflows, 2)
	assert.Equal(t, "wf-b", metrics.TopWorkflows[0].WorkflowID)
	assert.Equal(t, 30, metrics.TopWorkflows[0].Executions)
	assert.Equal(t, "wf-a", metrics.TopWorkflows[1].WorkflowID)
	assert.InDelta(t, 0.9, metrics.TopWorkflows[1].SuccessRate, 0.001)

	require.Len(t, metrics.ExecutionTrend, 2)
	assert.Equal(t, "2025-03-10", metrics.ExecutionTrend[0].Date)
	assert.Equal(t, 30, metrics.ExecutionTrend[0].Executions)
	assert.Equal(t, 19, metrics.ExecutionTrend[0].Successes)
	assert.InDelta(t, 200, metrics.ExecutionTrend[0].AverageTime, 0.001)
	assert.Equal(t, "2025-03-09", metrics.ExecutionTrend[1].Date)
}

func TestFleetMetrics_TopWorkflowsCapped(t *testing.T) {
	st := memory.NewStore()

	for i := range topWorkflowCount + 3 {
		workflow := &models.Workflow{
			ID:     fmt.Sprintf("wf-%02d", i),
			Name:   fmt.Sprintf("Workflow %d", i),
			Status: models.WorkflowStatusActive,
			Analytics: &models.WorkflowAnalytics{
				TotalExecutions:      i + 1,
				SuccessfulExecutions: i + 1,
				NodePerformance:      map[string]*models.NodeMetadata{},
			},
		}
		require.NoError(t, st.SaveWorkflow(t.Context(), workflow))
	}

	recorder := NewRecorder(st, testLogger())

	metrics, err := recorder.FleetMetrics(t.Context())
	require.NoError(t, err)

	require.Len(t, metrics.TopWorkflows, topWorkflowCount)
	assert.Equal(t, "wf-07", metrics.TopWorkflows[0].WorkflowID)
	assert.Equal(t, 8, metrics.TopWorkflows[0].Executions)
	assert.Equal(t, "wf-03", metrics.TopWorkflows[topWorkflowCount-1].WorkflowID)
}
