package models

import "time"

// HistoryRetentionDays bounds the per-workflow daily execution history.
const HistoryRetentionDays = 30

// WorkflowAnalytics keeps rolling success/failure/timing aggregates for one
// workflow. It is owned by the workflow and mutated only by the analytics
// recorder, under a per-workflow exclusive section. Times are milliseconds.
type WorkflowAnalytics struct {
	TotalExecutions      int                      `json:"total_executions"`
	SuccessfulExecutions int                      `json:"successful_executions"`
	FailedExecutions     int                      `json:"failed_executions"`
	AverageExecutionTime float64                  `json:"average_execution_time"`
	LastExecuted         *time.Time               `json:"last_executed,omitempty"`
	ExecutionHistory     []*DailyStats            `json:"execution_history,omitempty"`
	NodePerformance      map[string]*NodeMetadata `json:"node_performance,omitempty"`
}

// DailyStats is one calendar-date bucket of the execution history.
type DailyStats struct {
	Date        string  `json:"date"` // YYYY-MM-DD, engine-local timezone
	Executions  int     `json:"executions"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	AverageTime float64 `json:"average_time"`
}

// HistoryDate formats a timestamp as a history bucket key.
func HistoryDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// SuccessRate returns successful/total, or zero with no executions.
func (a *WorkflowAnalytics) SuccessRate() float64 {
	if a == nil || a.TotalExecutions == 0 {
		return 0
	}

	return float64(a.SuccessfulExecutions) / float64(a.TotalExecutions)
}
