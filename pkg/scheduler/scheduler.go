// Package scheduler fires workflow executions from workflow schedules and
// inbound platform events. Only interval schedules run; cron and once
// declarations are carried in the data model and surfaced as a warning until
// they are wired up.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

// Executor starts workflow executions. Satisfied by engine.Engine.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, workflowID string, eventContext map[string]any, triggeredBy models.TriggeredBy) (*models.Execution, error)
}

// Scheduler keeps one cron job per active interval-scheduled workflow and
// reconciles the job set against the store on every Refresh.
type Scheduler struct {
	store    store.Store
	executor Executor
	logger   *slog.Logger
	cron     *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	jobs      map[string]cron.EntryID
	intervals map[string]time.Duration
	warned    map[string]bool
}

// NewScheduler creates a scheduler. Jobs skip a tick while the previous run
// is still going and recover from panics inside job functions.
func NewScheduler(st store.Store, executor Executor, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    st,
		executor: executor,
		logger:   logger.With("module", "scheduler"),
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		jobs:      make(map[string]cron.EntryID),
		intervals: make(map[string]time.Duration),
		warned:    make(map[string]bool),
	}
}

// Start reconciles once and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.Refresh(s.ctx); err != nil {
		return fmt.Errorf("initial schedule refresh: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", "jobs", len(s.jobs))

	return nil
}

// Stop halts the cron runner and drops all jobs. Running jobs finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.mu.Lock()
	s.jobs = make(map[string]cron.EntryID)
	s.intervals = make(map[string]time.Duration)
	s.mu.Unlock()

	s.logger.Info("Scheduler stopped")
}

// Refresh reconciles cron jobs against the store: registers jobs for active
// workflows with runnable interval schedules, drops jobs whose workflow went
// away or stopped being schedulable, and reschedules on interval changes.
func (s *Scheduler) Refresh(ctx context.Context) error {
	workflows, err := s.store.Workflows(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	desired := make(map[string]time.Duration)

	for _, workflow := range workflows {
		schedule := workflow.Schedule
		if schedule == nil || !schedule.Enabled || workflow.Status != models.WorkflowStatusActive {
			continue
		}

		if schedule.Runnable() {
			desired[workflow.ID] = schedule.IntervalDuration()

			continue
		}

		// Enabled cron and once schedules are declared but not yet driven.
		if !s.warned[workflow.ID] {
			s.warned[workflow.ID] = true
			s.logger.WarnContext(ctx, "Schedule type not supported, workflow will not be scheduled",
				"workflow_id", workflow.ID, "schedule_type", string(schedule.Type))
		}
	}

	for workflowID, entryID := range s.jobs {
		interval, keep := desired[workflowID]
		if keep && interval == s.intervals[workflowID] {
			continue
		}

		s.cron.Remove(entryID)
		delete(s.jobs, workflowID)
		delete(s.intervals, workflowID)

		if !keep {
			s.logger.InfoContext(ctx, "Unscheduled workflow", "workflow_id", workflowID)
		}
	}

	for workflowID, interval := range desired {
		if _, exists := s.jobs[workflowID]; exists {
			continue
		}

		entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.job(workflowID))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to schedule workflow",
				"workflow_id", workflowID, "interval", interval.String(), "error", err)

			continue
		}

		s.jobs[workflowID] = entryID
		s.intervals[workflowID] = interval
		delete(s.warned, workflowID)

		s.logger.InfoContext(ctx, "Scheduled workflow",
			"workflow_id", workflowID, "interval", interval.String())
	}

	return nil
}

// RunRefreshLoop re-reconciles on a fixed period until the context ends.
func (s *Scheduler) RunRefreshLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Schedule refresh failed", "error", err)
			}
		}
	}
}

// ScheduledWorkflows returns the workflow IDs with a registered job, sorted.
func (s *Scheduler) ScheduledWorkflows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (s *Scheduler) job(workflowID string) func() {
	return func() {
		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}

		execution, err := s.executor.ExecuteWorkflow(ctx, workflowID,
			map[string]any{
				"scheduled": true,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
			models.TriggeredBy{Type: models.TriggerSourceSchedule, Source: "scheduler"})
		if err != nil {
			// The workflow may have been deleted or deactivated since the
			// last refresh; the next refresh drops the job.
			s.logger.WarnContext(ctx, "Scheduled execution rejected",
				"workflow_id", workflowID, "error", err)

			return
		}

		s.logger.InfoContext(ctx, "Scheduled execution finished",
			"workflow_id", workflowID,
			"execution_id", execution.ID,
			"status", string(execution.Status))
	}
}
