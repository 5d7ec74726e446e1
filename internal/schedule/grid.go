package schedule

import "fmt"

// Grid is a duration × task-count matrix of Status cells addressed by
// (tick, task index). Accessors panic on out-of-range coordinates.
type Grid struct {
	ticks int
	tasks int
	cells []Status
}

// NewGrid returns a grid with every cell set to StatusNone.
func NewGrid(ticks, tasks int) *Grid {
	cells := make([]Status, ticks*tasks)
	for i := range cells {
		cells[i] = StatusNone
	}
	return &Grid{ticks: ticks, tasks: tasks, cells: cells}
}

func (g *Grid) offset(tick, task int) int {
	if !g.InRange(tick, task) {
		panic(fmt.Sprintf("schedule: cell (%d,%d) out of range [0,%d)x[0,%d)", tick, task, g.ticks, g.tasks))
	}
	return tick*g.tasks + task
}

// At returns the status of cell (tick, task).
func (g *Grid) At(tick, task int) Status { return g.cells[g.offset(tick, task)] }

// Set overwrites cell (tick, task). Marks are never merged.
func (g *Grid) Set(tick, task int, s Status) { g.cells[g.offset(tick, task)] = s }

// InRange reports whether (tick, task) addresses a cell.
func (g *Grid) InRange(tick, task int) bool {
	return tick >= 0 && tick < g.ticks && task >= 0 && task < g.tasks
}

// Row returns a copy of all task cells at tick.
func (g *Grid) Row(tick int) []Status {
	start := g.offset(tick, 0)
	out := make([]Status, g.tasks)
	copy(out, g.cells[start:start+g.tasks])
	return out
}

// Count returns how many cells of task hold s.
func (g *Grid) Count(task int, s Status) int {
	n := 0
	for t := 0; t < g.ticks; t++ {
		if g.At(t, task) == s {
			n++
		}
	}
	return n
}
