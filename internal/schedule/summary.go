package schedule

// TaskSummary aggregates the marks of a single task column.
type TaskSummary struct {
	ID          string  `json:"id"`
	Executed    int     `json:"executed"`
	Preemptions int     `json:"preemptions"`
	Overdue     int     `json:"overdue"`
	Completions int     `json:"completions,omitempty"`
	AvgResponse float64 `json:"avg_response,omitempty"`
}

// Summary is the derived statistics view of a Schedule.
type Summary struct {
	Busy        int           `json:"busy"`
	Utilization float64       `json:"utilization"`
	Demand      float64       `json:"demand"`
	Preemptions int           `json:"preemptions"`
	Overdue     int           `json:"overdue"`
	PerTask     []TaskSummary `json:"per_task"`
}

// Summarize computes utilization (non-idle ticks / duration) and preemption
// and overdue totals. Demand is copied from the schedule.
func (s *Schedule) Summarize() Summary {
	sum := Summary{PerTask: make([]TaskSummary, s.Tasks), Demand: s.Demand}
	for i := range sum.PerTask {
		sum.PerTask[i].ID = s.Header[i]
	}
	for t := 0; t < s.Duration; t++ {
		if col := s.ActiveTask[t]; col != Idle {
			sum.Busy++
			sum.PerTask[col-1].Executed++
		}
	}
	for i := range sum.PerTask {
		ts := &sum.PerTask[i]
		ts.Preemptions = s.Flags.Count(i, StatusPreempted)
		ts.Overdue = s.Flags.Count(i, StatusOverdue)
		if avg, ok := s.AverageResponse(i); ok {
			ts.Completions = s.Completions[i]
			ts.AvgResponse = avg
		}
		sum.Preemptions += ts.Preemptions
		sum.Overdue += ts.Overdue
	}
	if s.Duration > 0 {
		sum.Utilization = float64(sum.Busy) / float64(s.Duration)
	}
	return sum
}
