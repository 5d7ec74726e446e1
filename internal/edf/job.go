package edf

import "rtsched/internal/task"

// job is one released instance of a task.
//
// Jobs are owned by a single engine run. A destroyed job is never revived;
// each period of a periodic task gets its own job.
type job struct {
	origin task.Task

	remaining int
	release   int
	deadline  int

	// seq is the job's position in the release timetable (release tick, then
	// task index). It breaks deadline ties in favour of earlier arrivals.
	seq int

	// lastRan is the last tick the job executed on, or -1.
	lastRan int
}

func newJob(origin task.Task, release, deadline, seq int) *job {
	return &job{
		origin:    origin,
		remaining: origin.Cost(),
		release:   release,
		deadline:  deadline,
		seq:       seq,
		lastRan:   -1,
	}
}

// before reports whether j must run ahead of o.
func (j *job) before(o *job) bool {
	if j.deadline != o.deadline {
		return j.deadline < o.deadline
	}
	return j.seq < o.seq
}

func (j *job) index() int { return j.origin.TaskIndex() }

// aperiodic returns the originating aperiodic task, if any.
func (j *job) aperiodic() (task.Aperiodic, bool) {
	a, ok := j.origin.(task.Aperiodic)
	return a, ok
}

// timetable groups every job of the horizon by release tick.
//
// Within a tick, jobs appear in task index order (periodic, then aperiodic).
func timetable(set *task.Set) map[int][]*job {
	byTick := make(map[int][]*job)
	seq := 0
	for r := 0; r < set.Duration; r++ {
		for _, p := range set.Periodic {
			if r%p.T == 0 {
				byTick[r] = append(byTick[r], newJob(p, r, r+p.T, seq))
				seq++
			}
		}
		for _, a := range set.Aperiodic {
			if a.R == r {
				byTick[r] = append(byTick[r], newJob(a, r, set.Deadline(a), seq))
				seq++
			}
		}
	}
	return byTick
}
