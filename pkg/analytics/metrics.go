package analytics

import (
	"context"
	"sort"

	"github.com/weftlabs/weft/pkg/models"
)

// WorkflowRank is one row of the busiest-workflows leaderboard.
type WorkflowRank struct {
	WorkflowID  string  `json:"workflow_id"`
	Name        string  `json:"name"`
	Executions  int     `json:"executions"`
	SuccessRate float64 `json:"success_rate"`
}

// FleetMetrics aggregates analytics across every stored workflow.
type FleetMetrics struct {
	TotalWorkflows       int                  `json:"total_workflows"`
	ActiveWorkflows      int                  `json:"active_workflows"`
	TotalExecutions      int                  `json:"total_executions"`
	SuccessfulExecutions int                  `json:"successful_executions"`
	FailedExecutions     int                  `json:"failed_executions"`
	SuccessRate          float64              `json:"success_rate"`
	AverageExecutionTime float64              `json:"average_execution_time"`
	TopWorkflows         []WorkflowRank       `json:"top_workflows"`
	ExecutionTrend       []*models.DailyStats `json:"execution_trend"`
}

// topWorkflowCount bounds the leaderboard size.
const topWorkflowCount = 5

// FleetMetrics rolls the per-workflow aggregates up into one fleet view. The
// average execution time is weighted by execution count, and the trend merges
// every workflow's daily history into shared buckets, newest first.
func (r *Recorder) FleetMetrics(ctx context.Context) (*FleetMetrics, error) {
	workflows, err := r.store.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &FleetMetrics{
		TotalWorkflows: len(workflows),
		TopWorkflows:   []WorkflowRank{},
		ExecutionTrend: []*models.DailyStats{},
	}

	var weightedTime float64

	ranks := make([]WorkflowRank, 0, len(workflows))
	trend := make(map[string]*models.DailyStats)

	for _, workflow := range workflows {
		if workflow.Status == models.WorkflowStatusActive {
			metrics.ActiveWorkflows++
		}

		aggregate := workflow.Analytics
		if aggregate == nil || aggregate.TotalExecutions == 0 {
			continue
		}

		metrics.TotalExecutions += aggregate.TotalExecutions
		metrics.SuccessfulExecutions += aggregate.SuccessfulExecutions
		metrics.FailedExecutions += aggregate.FailedExecutions
		weightedTime += aggregate.AverageExecutionTime * float64(aggregate.TotalExecutions)

		ranks = append(ranks, WorkflowRank{
			WorkflowID:  workflow.ID,
			Name:        workflow.Name,
			Executions:  aggregate.TotalExecutions,
			SuccessRate: aggregate.SuccessRate(),
		})

		for _, day := range aggregate.ExecutionHistory {
			bucket, ok := trend[day.Date]
			if !ok {
				bucket = &models.DailyStats{Date: day.Date}
				trend[day.Date] = bucket
			}

			mergedCount := bucket.Executions + day.Executions
			if mergedCount > 0 {
				bucket.AverageTime = (bucket.AverageTime*float64(bucket.Executions) + day.AverageTime*float64(day.Executions)) / float64(mergedCount)
			}

			bucket.Executions = mergedCount
			bucket.Successes += day.Successes
			bucket.Failures += day.Failures
		}
	}

	if metrics.TotalExecutions > 0 {
		metrics.SuccessRate = float64(metrics.SuccessfulExecutions) / float64(metrics.TotalExecutions)
		metrics.AverageExecutionTime = weightedTime / float64(metrics.TotalExecutions)
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Executions != ranks[j].Executions {
			return ranks[i].Executions > ranks[j].Executions
		}

		return ranks[i].WorkflowID < ranks[j].WorkflowID
	})

	if len(ranks) > topWorkflowCount {
		ranks = ranks[:topWorkflowCount]
	}

	metrics.TopWorkflows = ranks

	for _, bucket := range trend {
		metrics.ExecutionTrend = append(metrics.ExecutionTrend, bucket)
	}

	sort.Slice(metrics.ExecutionTrend, func(i, j int) bool {
		return metrics.ExecutionTrend[i].Date > metrics.ExecutionTrend[j].Date
	})

	if len(metrics.ExecutionTrend) > models.HistoryRetentionDays {
		metrics.ExecutionTrend = metrics.ExecutionTrend[:models.HistoryRetentionDays]
	}

	return metrics, nil
}
