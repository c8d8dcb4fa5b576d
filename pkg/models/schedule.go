package models

import "time"

// ScheduleType selects the recurrence model for a workflow schedule.
type ScheduleType string

const (
	ScheduleTypeInterval ScheduleType = "interval"
	ScheduleTypeCron     ScheduleType = "cron"
	ScheduleTypeOnce     ScheduleType = "once"
)

// Schedule configures recurring execution of a workflow. Only interval
// schedules are evaluated by the scheduler; cron and once are declared in the
// data model but not yet scheduled.
type Schedule struct {
	Enabled  bool         `json:"enabled"`
	Type     ScheduleType `json:"type,omitempty"`
	Interval int64        `json:"interval,omitempty"` // milliseconds
	Cron     string       `json:"cron,omitempty"`
	StartAt  *time.Time   `json:"start_at,omitempty"`
}

// IntervalDuration returns the interval as a duration, or zero when the
// schedule is not an interval schedule.
func (s *Schedule) IntervalDuration() time.Duration {
	if s == nil || s.Type != ScheduleTypeInterval {
		return 0
	}

	return time.Duration(s.Interval) * time.Millisecond
}

// Runnable reports whether the scheduler should register this schedule.
func (s *Schedule) Runnable() bool {
	return s != nil && s.Enabled && s.Type == ScheduleTypeInterval && s.Interval > 0
}
