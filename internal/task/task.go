package task

// DefaultAperiodicDeadline is the relative response deadline D applied to every
// aperiodic task unless the set overrides it.
const DefaultAperiodicDeadline = 500

// Task is the capability shared by both task kinds.
//
// It is a closed sum: only Periodic and Aperiodic implement it, and callers
// that need kind-specific data use a type switch.
type Task interface {
	Label() string
	Cost() int
	TaskIndex() int
	Column() int

	isTask()
}

// Periodic is a recurring workload released every T ticks with implicit deadline T.
type Periodic struct {
	ID string `json:"id" yaml:"id"`
	C  int    `json:"c" yaml:"c"`
	T  int    `json:"t" yaml:"t"`

	// Index is assigned by NewSet and must not be set by loaders.
	Index int `json:"-" yaml:"-"`
}

// Aperiodic is a one-shot workload released at absolute time R.
type Aperiodic struct {
	ID string `json:"id" yaml:"id"`
	C  int    `json:"c" yaml:"c"`
	R  int    `json:"r" yaml:"r"`

	Index int `json:"-" yaml:"-"`
}

func (p Periodic) Label() string   { return p.ID }
func (p Periodic) Cost() int       { return p.C }
func (p Periodic) TaskIndex() int  { return p.Index }
func (p Periodic) Column() int     { return p.Index + 1 }
func (Periodic) isTask()           {}
func (a Aperiodic) Label() string  { return a.ID }
func (a Aperiodic) Cost() int      { return a.C }
func (a Aperiodic) TaskIndex() int { return a.Index }
func (a Aperiodic) Column() int    { return a.Index + 1 }
func (Aperiodic) isTask()          {}

// Releases returns every release instant of p strictly before horizon.
func (p Periodic) Releases(horizon int) []int {
	if p.T <= 0 {
		return nil
	}
	out := make([]int, 0, (horizon+p.T-1)/p.T)
	for r := 0; r < horizon; r += p.T {
		out = append(out, r)
	}
	return out
}
