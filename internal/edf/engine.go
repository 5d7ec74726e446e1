// Package edf simulates preemptive Earliest Deadline First scheduling over a
// discrete timeline.
package edf

import (
	"rtsched/internal/schedule"
	"rtsched/internal/task"
	"rtsched/internal/trace"
)

// Name identifies the engine in traces and reports.
const Name = "edf"

// Options tune a simulation run. The zero value is valid.
type Options struct {
	// Sink receives a Completed event for every job that finishes.
	Sink trace.Sink
}

// Simulate runs EDF over [0, set.Duration) and returns a fresh schedule.
//
// set must be validated; the engine does not re-check it.
func Simulate(set *task.Set) *schedule.Schedule {
	return SimulateWithOptions(set, Options{})
}

// SimulateWithOptions is Simulate with explicit options.
func SimulateWithOptions(set *task.Set, opts Options) *schedule.Schedule {
	r := &run{
		set:   set,
		sched: schedule.New(set),
		sink:  opts.Sink,
	}
	releases := timetable(set)
	for t := 0; t < set.Duration; t++ {
		r.arbitrate(t, releases[t])
		r.execute(t)
		r.backfill(t)
	}
	r.finish()
	return r.sched
}

// run is the state of one simulation; nothing in it outlives the call.
type run struct {
	set   *task.Set
	sched *schedule.Schedule
	sink  trace.Sink
	queue readyQueue
}

// arbitrate admits the jobs released at t. The earliest deadline among the
// active job and the new jobs wins; ties keep the earlier arrival.
func (r *run) arbitrate(t int, released []*job) {
	if len(released) == 0 {
		return
	}
	q := &r.queue
	winner := q.active
	for _, j := range released {
		if winner == nil || j.before(winner) {
			winner = j
		}
	}
	if prev := q.active; prev != winner && prev != nil {
		q.wait(prev)
		// A job handed the processor at the end of t-1 never ran on it.
		if prev.lastRan == t-1 {
			r.sched.MarkPreempted(t-1, prev.index())
		}
	}
	for _, j := range released {
		if j != winner {
			q.wait(j)
		}
	}
	q.active = winner
}

// execute runs the active job for tick t, then retires it if it completed or
// if its deadline is t+1 with work left.
func (r *run) execute(t int) {
	j := r.queue.active
	if j == nil {
		return
	}
	r.sched.Assign(t, j.origin.Column())
	j.remaining--
	j.lastRan = t

	switch {
	case j.remaining == 0:
		if _, ok := j.aperiodic(); ok {
			r.sched.AddResponse(j.index(), t-j.release)
		}
		trace.SafeRecord(r.sink, trace.TraceEvent{Kind: trace.EventCompleted, Tick: t, Task: j.index(), TaskID: j.origin.Label()})
		r.queue.active = nil
	case j.deadline <= t+1:
		r.sched.MarkOverdue(t, j.index())
		r.queue.active = nil
	}
}

// backfill promotes waiting jobs until one can still meet its deadline.
// Every popped job whose deadline is t+1 misses at t.
func (r *run) backfill(t int) {
	q := &r.queue
	for q.active == nil {
		j := q.next()
		if j == nil {
			return
		}
		if j.deadline <= t+1 {
			r.sched.MarkOverdue(t, j.index())
			continue
		}
		q.active = j
	}
}

// finish drains jobs still live at the horizon. Aperiodic jobs count as
// finished at the horizon for response-time purposes only.
func (r *run) finish() {
	for _, j := range r.queue.drain() {
		if _, ok := j.aperiodic(); ok {
			r.sched.AddResponse(j.index(), r.set.Duration-j.release)
		}
	}
}
