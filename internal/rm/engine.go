// Package rm builds Rate Monotonic schedules by direct slot assignment.
//
// Instead of simulating jobs tick by tick, the engine fills the timeline one
// task at a time in static priority order. A task can only take ticks left
// idle by every task placed before it, which is what makes higher-priority
// work immune to lower-priority work. Aperiodic tasks are placed last, in
// release order, into whatever remains idle.
package rm

import (
	"fmt"
	"strings"

	"rtsched/internal/schedule"
	"rtsched/internal/task"
	"rtsched/internal/trace"
)

// Name identifies the engine in traces and reports.
const Name = "rm"

// Placement selects the direction in which a periodic window is filled.
type Placement string

const (
	// PlaceASAP fills each window from its release forward.
	PlaceASAP Placement = "asap"
	// PlaceALAP fills each window backward from deadline-1, leaving the
	// earliest ticks of the window to tasks placed afterwards.
	PlaceALAP Placement = "alap"
)

// ParsePlacement accepts "asap" or "alap" (case-insensitive); empty means PlaceASAP.
func ParsePlacement(raw string) (Placement, error) {
	switch p := Placement(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PlaceASAP, nil
	case PlaceASAP, PlaceALAP:
		return p, nil
	default:
		return "", fmt.Errorf("invalid placement %q (expected asap|alap)", raw)
	}
}

// Options tune a simulation run. The zero value is valid.
type Options struct {
	Placement Placement

	// FlagTruncatedWindows also reports misses in the final window of a
	// periodic task (and of an aperiodic task) cut short by the horizon.
	// By default those windows are never flagged overdue, since the true
	// deadline lies past the horizon.
	FlagTruncatedWindows bool

	// Sink receives a Completed event for every window that is fully served.
	Sink trace.Sink
}

// Simulate builds the RM schedule over [0, set.Duration).
//
// set must be validated; the engine does not re-check it.
func Simulate(set *task.Set) *schedule.Schedule {
	return SimulateWithOptions(set, Options{})
}

// SimulateWithOptions is Simulate with explicit options.
func SimulateWithOptions(set *task.Set, opts Options) *schedule.Schedule {
	if opts.Placement == "" {
		opts.Placement = PlaceASAP
	}
	r := &run{set: set, sched: schedule.New(set), opts: opts}
	for _, p := range PriorityOrder(set.Periodic) {
		r.placePeriodic(p)
	}
	r.placeAperiodic(ReleaseOrder(set.Aperiodic))
	return r.sched
}

type run struct {
	set   *task.Set
	sched *schedule.Schedule
	opts  Options
}

func (r *run) placePeriodic(p task.Periodic) {
	for release := 0; release < r.set.Duration; release += p.T {
		deadline := release + p.T
		truncated := false
		if deadline > r.set.Duration {
			deadline = r.set.Duration
			truncated = true
		}
		r.placeWindow(p, release, deadline, truncated)
	}
}

// placeWindow gives p up to C idle ticks of [release, deadline).
//
// Whenever two consecutive ticks assigned to p are separated by foreign work,
// the earlier of the two is flagged preempted. If the window cannot hold C
// ticks, the last tick found is flagged preempted and deadline-1 overdue, in
// that order.
func (r *run) placeWindow(p task.Periodic, release, deadline int, truncated bool) {
	start, stop, step := release, deadline, 1
	if r.opts.Placement == PlaceALAP {
		start, stop, step = deadline-1, release-1, -1
	}

	remaining := p.C
	first, last := -1, -1
	for tick := start; tick != stop && remaining > 0; tick += step {
		if !r.sched.IsIdle(tick) {
			continue
		}
		if last >= 0 && tick != last+step {
			r.sched.MarkPreempted(min(tick, last), p.Index)
		}
		r.sched.Assign(tick, p.Column())
		remaining--
		if first < 0 {
			first = tick
		}
		last = tick
	}

	if remaining == 0 {
		r.record(max(first, last), p)
		return
	}
	if truncated && !r.opts.FlagTruncatedWindows {
		return
	}
	if last >= 0 {
		r.sched.MarkPreempted(last, p.Index)
	}
	r.sched.MarkOverdue(deadline-1, p.Index)
}

// placeAperiodic serves aperiodic tasks one at a time with a single forward
// cursor. A task never starts before its release nor before the previous
// aperiodic task has finished or missed.
func (r *run) placeAperiodic(order []task.Aperiodic) {
	cursor := 0
	for _, a := range order {
		if a.R >= r.set.Duration {
			continue
		}
		if cursor < a.R {
			cursor = a.R
		}
		cursor = r.serveAperiodic(a, cursor)
	}
}

// serveAperiodic consumes idle ticks from cursor until a completes, its
// deadline is reached or the horizon ends, and returns the new cursor.
func (r *run) serveAperiodic(a task.Aperiodic, cursor int) int {
	deadline := r.set.Deadline(a)
	remaining := a.C
	lastRan := -1
	for remaining > 0 {
		if cursor >= deadline {
			r.sched.MarkOverdue(deadline-1, a.Index)
			return cursor
		}
		if cursor >= r.set.Duration {
			if r.opts.FlagTruncatedWindows {
				r.sched.MarkOverdue(r.set.Duration-1, a.Index)
			}
			return cursor
		}
		if r.sched.IsIdle(cursor) {
			r.sched.Assign(cursor, a.Column())
			remaining--
			lastRan = cursor
		} else if lastRan >= 0 && lastRan == cursor-1 {
			r.sched.MarkPreempted(lastRan, a.Index)
		}
		cursor++
	}
	r.record(lastRan, a)
	return cursor
}

func (r *run) record(tick int, t task.Task) {
	trace.SafeRecord(r.opts.Sink, trace.TraceEvent{Kind: trace.EventCompleted, Tick: tick, Task: t.TaskIndex(), TaskID: t.Label()})
}
