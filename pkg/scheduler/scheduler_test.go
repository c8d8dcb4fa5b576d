package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store/memory"
)

type executorCall struct {
	workflowID  string
	context     map[string]any
	triggeredBy models.TriggeredBy
}

type stubExecutor struct {
	mu    sync.Mutex
	calls []executorCall
	errs  map[string]error
}

func (s *stubExecutor) ExecuteWorkflow(_ context.Context, workflowID string, eventContext map[string]any, triggeredBy models.TriggeredBy) (*models.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errs[workflowID]; err != nil {
		return nil, err
	}

	s.calls = append(s.calls, executorCall{
		workflowID:  workflowID,
		context:     eventContext,
		triggeredBy: triggeredBy,
	})

	return &models.Execution{
		ID:         "exec-" + workflowID,
		WorkflowID: workflowID,
		Status:     models.ExecutionStatusCompleted,
	}, nil
}

func (s *stubExecutor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func (s *stubExecutor) recorded() []executorCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]executorCall, len(s.calls))
	copy(calls, s.calls)

	return calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func scheduledWorkflow(id string, status models.WorkflowStatus, schedule *models.Schedule) *models.Workflow {
	now := time.Now().UTC()

	return &models.Workflow{
		ID:      id,
		Name:    "Workflow " + id,
		Version: 1,
		Status:  status,
		Nodes: []*models.Node{
			{
				ID:     "start",
				Type:   models.NodeTypeTrigger,
				Name:   "Start",
				Config: map[string]any{"triggerType": "schedule"},
			},
		},
		Schedule:  schedule,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func triggeredWorkflow(id string, status models.WorkflowStatus, triggers ...*models.Trigger) *models.Workflow {
	workflow := scheduledWorkflow(id, status, nil)
	workflow.Triggers = triggers

	return workflow
}

func TestScheduler_Refresh_RegistersRunnableIntervalSchedules(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{}
	scheduler := NewScheduler(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-interval", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 60_000,
	})))
	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-draft", models.WorkflowStatusDraft, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 60_000,
	})))
	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-disabled", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  false,
		Type:     models.ScheduleTypeInterval,
		Interval: 60_000,
	})))
	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-cron", models.WorkflowStatusActive, &models.Schedule{
		Enabled: true,
		Type:    models.ScheduleTypeCron,
		Cron:    "0 9 * * MON",
	})))

	require.NoError(t, scheduler.Refresh(t.Context()))

	assert.Equal(t, []string{"wf-interval"}, scheduler.ScheduledWorkflows())
	assert.True(t, scheduler.warned["wf-cron"])
	assert.False(t, scheduler.warned["wf-interval"])
}

func TestScheduler_Refresh_ReconcilesChanges(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{}
	scheduler := NewScheduler(st, executor, testLogger())

	kept := scheduledWorkflow("wf-kept", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 60_000,
	})
	dropped := scheduledWorkflow("wf-dropped", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 30_000,
	})

	require.NoError(t, st.SaveWorkflow(t.Context(), kept))
	require.NoError(t, st.SaveWorkflow(t.Context(), dropped))
	require.NoError(t, scheduler.Refresh(t.Context()))
	require.Equal(t, []string{"wf-dropped", "wf-kept"}, scheduler.ScheduledWorkflows())

	kept.Schedule.Interval = 120_000
	dropped.Status = models.WorkflowStatusPaused
	require.NoError(t, st.SaveWorkflow(t.Context(), kept))
	require.NoError(t, st.SaveWorkflow(t.Context(), dropped))

	require.NoError(t, scheduler.Refresh(t.Context()))

	assert.Equal(t, []string{"wf-kept"}, scheduler.ScheduledWorkflows())
	assert.Equal(t, 2*time.Minute, scheduler.intervals["wf-kept"])
}

func TestScheduler_JobFiresExecutor(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{}
	scheduler := NewScheduler(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-fast", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 50,
	})))

	require.NoError(t, scheduler.Start(t.Context()))
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		return executor.callCount() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	call := executor.recorded()[0]
	assert.Equal(t, "wf-fast", call.workflowID)
	assert.Equal(t, models.TriggerSourceSchedule, call.triggeredBy.Type)
	assert.Equal(t, "scheduler", call.triggeredBy.Source)
	assert.Equal(t, true, call.context["scheduled"])
	assert.NotEmpty(t, call.context["timestamp"])
}

func TestScheduler_JobSurvivesExecutorRejection(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{errs: map[string]error{"wf-gone": errors.New("workflow not found")}}
	scheduler := NewScheduler(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), scheduledWorkflow("wf-gone", models.WorkflowStatusActive, &models.Schedule{
		Enabled:  true,
		Type:     models.ScheduleTypeInterval,
		Interval: 60_000,
	})))

	require.NoError(t, scheduler.Start(t.Context()))
	scheduler.job("wf-gone")()
	scheduler.Stop()

	assert.Zero(t, executor.callCount())
}

func TestTriggerMatcher_Match_Keyword(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{}
	matcher := NewTriggerMatcher(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), triggeredWorkflow("wf-refunds", models.WorkflowStatusActive, &models.Trigger{
		ID:      "t1",
		Type:    models.TriggerTypeKeyword,
		Config:  map[string]any{"keywords": []any{"refund", "billing"}},
		Enabled: true,
	})))

	executions, err := matcher.Match(t.Context(), InboundEvent{
		Type:   models.TriggerTypeMessage,
		Text:   "I want a REFUND for my last order",
		UserID: "u-99",
		Source: "chat",
	})
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, "wf-refunds", executions[0].WorkflowID)

	require.Equal(t, 1, executor.callCount())
	call := executor.recorded()[0]
	assert.Equal(t, models.TriggerSourceTrigger, call.triggeredBy.Type)
	assert.Equal(t, "u-99", call.triggeredBy.UserID)
	assert.Equal(t, "chat", call.triggeredBy.Source)
	assert.Equal(t, "I want a REFUND for my last order", call.context["message"])
	assert.Equal(t, map[string]any{"id": "u-99"}, call.context["user"])
}

func TestTriggerMatcher_Match_TriggerSemantics(t *testing.T) {
	testCases := []struct {
		name    string
		status  models.WorkflowStatus
		trigger *models.Trigger
		event   InboundEvent
		fires   bool
	}{
		{
			name:    "message trigger matches any message",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeMessage, Text: "hello"},
			fires:   true,
		},
		{
			name:    "keyword trigger without a hit stays quiet",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeKeyword, Config: map[string]any{"keywords": []any{"refund"}}, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeMessage, Text: "just saying hi"},
			fires:   false,
		},
		{
			name:    "api trigger pinned to its endpoint",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeAPI, Config: map[string]any{"endpoint": "orders"}, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeAPI, Source: "orders"},
			fires:   true,
		},
		{
			name:    "api trigger rejects other endpoints",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeAPI, Config: map[string]any{"endpoint": "orders"}, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeAPI, Source: "billing"},
			fires:   false,
		},
		{
			name:    "schedule trigger never matches inbound events",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeSchedule, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeMessage, Text: "anything"},
			fires:   false,
		},
		{
			name:    "disabled trigger never fires",
			status:  models.WorkflowStatusActive,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: false},
			event:   InboundEvent{Type: models.TriggerTypeMessage, Text: "hello"},
			fires:   false,
		},
		{
			name:    "paused workflow never fires",
			status:  models.WorkflowStatusPaused,
			trigger: &models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: true},
			event:   InboundEvent{Type: models.TriggerTypeMessage, Text: "hello"},
			fires:   false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			st := memory.NewStore()
			executor := &stubExecutor{}
			matcher := NewTriggerMatcher(st, executor, testLogger())

			require.NoError(t, st.SaveWorkflow(t.Context(), triggeredWorkflow("wf-1", testCase.status, testCase.trigger)))

			executions, err := matcher.Match(t.Context(), testCase.event)
			require.NoError(t, err)

			if testCase.fires {
				assert.Len(t, executions, 1)
			} else {
				assert.Empty(t, executions)
			}
		})
	}
}

func TestTriggerMatcher_Match_FiresOncePerWorkflow(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{}
	matcher := NewTriggerMatcher(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), triggeredWorkflow("wf-multi", models.WorkflowStatusActive,
		&models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: true},
		&models.Trigger{ID: "t2", Type: models.TriggerTypeKeyword, Config: map[string]any{"keywords": []any{"hello"}}, Enabled: true},
	)))

	executions, err := matcher.Match(t.Context(), InboundEvent{Type: models.TriggerTypeMessage, Text: "hello there"})
	require.NoError(t, err)

	assert.Len(t, executions, 1)
	assert.Equal(t, 1, executor.callCount())
}

func TestTriggerMatcher_Match_ContinuesPastRejections(t *testing.T) {
	st := memory.NewStore()
	executor := &stubExecutor{errs: map[string]error{"wf-broken": errors.New("workflow wf-broken is paused")}}
	matcher := NewTriggerMatcher(st, executor, testLogger())

	require.NoError(t, st.SaveWorkflow(t.Context(), triggeredWorkflow("wf-broken", models.WorkflowStatusActive,
		&models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: true})))
	require.NoError(t, st.SaveWorkflow(t.Context(), triggeredWorkflow("wf-healthy", models.WorkflowStatusActive,
		&models.Trigger{ID: "t1", Type: models.TriggerTypeMessage, Enabled: true})))

	executions, err := matcher.Match(t.Context(), InboundEvent{Type: models.TriggerTypeMessage, Text: "ping"})
	require.NoError(t, err)

	require.Len(t, executions, 1)
	assert.Equal(t, "wf-healthy", executions[0].WorkflowID)
}
