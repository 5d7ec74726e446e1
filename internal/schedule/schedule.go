// Package schedule holds the per-run output artifact shared by the engines.
//
// A Schedule is allocated by New, populated by exactly one engine run and then
// only read (by the reporter, the trace builder or the API).
package schedule

import (
	"fmt"
	"reflect"

	"rtsched/internal/task"
)

// Idle is the ActiveTask value of a tick on which nothing executed.
const Idle = 0

// Schedule is the tick-by-tick execution record of one engine run.
type Schedule struct {
	Duration int
	Tasks    int

	// Header holds task labels in task index order.
	Header []string

	// ActiveTask has length Duration; values are Idle or a column in [1, Tasks].
	ActiveTask []int

	Flags *Grid

	// ResponseSum and Completions are indexed by task index. Only the EDF
	// engine populates them, and only for aperiodic tasks.
	ResponseSum []int
	Completions []int

	// Demand is the periodic processor demand sum(C/T) of the simulated set.
	Demand float64
}

// New allocates a blank schedule for set and pre-marks every release instant.
//
// The released marks depend only on the task set, so they are identical for
// every engine and are written before any engine runs.
func New(set *task.Set) *Schedule {
	s := &Schedule{
		Duration:    set.Duration,
		Tasks:       set.Count(),
		Header:      set.Labels(),
		ActiveTask:  make([]int, set.Duration),
		Flags:       NewGrid(set.Duration, set.Count()),
		ResponseSum: make([]int, set.Count()),
		Completions: make([]int, set.Count()),
		Demand:      set.Utilization(),
	}
	for _, p := range set.Periodic {
		for _, r := range p.Releases(set.Duration) {
			s.Flags.Set(r, p.Index, StatusReleased)
		}
	}
	for _, a := range set.Aperiodic {
		if a.R < set.Duration {
			s.Flags.Set(a.R, a.Index, StatusReleased)
		}
	}
	return s
}

// Assign records that the task with the given column executed at tick.
func (s *Schedule) Assign(tick, column int) {
	if column < 1 || column > s.Tasks {
		panic(fmt.Sprintf("schedule: column %d out of range [1,%d]", column, s.Tasks))
	}
	s.ActiveTask[tick] = column
}

// IsIdle reports whether no task executed at tick.
func (s *Schedule) IsIdle(tick int) bool { return s.ActiveTask[tick] == Idle }

// MarkPreempted flags the task at tick as having lost the processor.
func (s *Schedule) MarkPreempted(tick, taskIndex int) {
	s.Flags.Set(tick, taskIndex, StatusPreempted)
}

// MarkOverdue flags the task at tick as having missed its deadline.
func (s *Schedule) MarkOverdue(tick, taskIndex int) {
	s.Flags.Set(tick, taskIndex, StatusOverdue)
}

// AddResponse accumulates one finished aperiodic job's response time.
func (s *Schedule) AddResponse(taskIndex, responseTime int) {
	s.ResponseSum[taskIndex] += responseTime
	s.Completions[taskIndex]++
}

// AverageResponse returns the mean accumulated response time of a task.
// ok is false when nothing was accumulated.
func (s *Schedule) AverageResponse(taskIndex int) (avg float64, ok bool) {
	n := s.Completions[taskIndex]
	if n == 0 {
		return 0, false
	}
	return float64(s.ResponseSum[taskIndex]) / float64(n), true
}

// Equal reports whether two schedules hold identical content.
func (s *Schedule) Equal(o *Schedule) bool {
	if s == nil || o == nil {
		return s == o
	}
	return reflect.DeepEqual(s, o)
}
