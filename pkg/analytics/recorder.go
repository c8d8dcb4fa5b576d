// Package analytics folds finished executions into per-workflow aggregates
// and serves fleet-wide rollups. Aggregates live on the workflow record, so
// every update is a load-apply-save against the store, serialized per
// workflow to keep counters exact under concurrent executions.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/weftlabs/weft/pkg/models"
	"github.com/weftlabs/weft/pkg/store"
)

// NodeSample is one node execution attempt observed during a traversal.
type NodeSample struct {
	NodeID     string
	DurationMs float64
	At         time.Time
	Failed     bool
}

// Recorder applies execution outcomes to workflow analytics.
type Recorder struct {
	store  store.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(st store.Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  st,
		logger: logger.With("module", "analytics"),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *Recorder) workflowLock(workflowID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[workflowID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[workflowID] = lock
	}

	return lock
}

// RecordExecution folds one terminal execution into the workflow's analytics.
// Workflow counters and daily history move only for completed and failed
// executions; node samples are applied for every attempt that ran, including
// runs cut short by cancellation. The whole update happens on a freshly
// loaded workflow under a per-workflow lock, so each execution is counted
// exactly once no matter how many run concurrently.
func (r *Recorder) RecordExecution(ctx context.Context, workflowID string, execution *models.Execution, samples []NodeSample) error {
	lock := r.workflowLock(workflowID)
	lock.Lock()
	defer lock.Unlock()

	workflow, err := r.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	aggregate := workflow.EnsureAnalytics()

	success := execution.Status == models.ExecutionStatusCompleted
	failed := execution.Status == models.ExecutionStatusFailed

	if success || failed {
		finishedAt := time.Now()
		if execution.EndTime != nil {
			finishedAt = *execution.EndTime
		}

		aggregate.TotalExecutions++
		if success {
			aggregate.SuccessfulExecutions++
		} else {
			aggregate.FailedExecutions++
		}

		sample := float64(execution.ExecutionTime)
		aggregate.AverageExecutionTime = models.IncrementalAverage(aggregate.AverageExecutionTime, sample, aggregate.TotalExecutions)
		aggregate.LastExecuted = &finishedAt

		recordDaily(aggregate, finishedAt, success, sample)
	}

	for _, sample := range samples {
		node := workflow.FindNode(sample.NodeID)
		if node == nil {
			r.logger.WarnContext(ctx, "Node sample for unknown node",
				"workflow_id", workflowID,
				"node_id", sample.NodeID)

			continue
		}

		node.Metadata.Record(sample.DurationMs, sample.At, sample.Failed)

		metadata := node.Metadata
		aggregate.NodePerformance[node.ID] = &metadata
	}

	if err := r.store.SaveWorkflow(ctx, workflow); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Execution recorded",
		"workflow_id", workflowID,
		"execution_id", execution.ID,
		"status", string(execution.Status),
		"node_samples", len(samples))

	return nil
}

// recordDaily updates the bucket for the day finishedAt falls in, keeping the
// history sorted newest-first and capped at the retention window.
func recordDaily(aggregate *models.WorkflowAnalytics, finishedAt time.Time, success bool, sampleMs float64) {
	date := models.HistoryDate(finishedAt)

	var bucket *models.DailyStats
	for _, candidate := range aggregate.ExecutionHistory {
		if candidate.Date == date {
			bucket = candidate

			break
		}
	}

	if bucket == nil {
		bucket = &models.DailyStats{Date: date}
		aggregate.ExecutionHistory = append(aggregate.ExecutionHistory, bucket)
	}

	bucket.Executions++
	if success {
		bucket.Successes++
	} else {
		bucket.Failures++
	}

	bucket.AverageTime = models.IncrementalAverage(bucket.AverageTime, sampleMs, bucket.Executions)

	history := aggregate.ExecutionHistory
	sort.Slice(history, func(i, j int) bool { return history[i].Date > history[j].Date })

	if len(history) > models.HistoryRetentionDays {
		history = history[:models.HistoryRetentionDays]
	}

	aggregate.ExecutionHistory = history
}
