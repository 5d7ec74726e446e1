package rm

import (
	"sort"

	"rtsched/internal/task"
)

// PriorityOrder returns the periodic tasks highest priority first.
//
// Policy:
//   - shorter period first
//   - equal periods: larger computation time first
//   - remaining ties: lower task index first
//
// The input slice is not modified.
func PriorityOrder(periodic []task.Periodic) []task.Periodic {
	out := make([]task.Periodic, len(periodic))
	copy(out, periodic)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.T != b.T {
			return a.T < b.T
		}
		if a.C != b.C {
			return a.C > b.C
		}
		return a.Index < b.Index
	})
	return out
}

// ReleaseOrder returns the aperiodic tasks by release time, then task index.
func ReleaseOrder(aperiodic []task.Aperiodic) []task.Aperiodic {
	out := make([]task.Aperiodic, len(aperiodic))
	copy(out, aperiodic)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].R != out[j].R {
			return out[i].R < out[j].R
		}
		return out[i].Index < out[j].Index
	})
	return out
}
