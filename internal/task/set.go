package task

import "strings"

// Set is a validated, immutable task set.
//
// It is safe for concurrent read access; engines only read it.
type Set struct {
	Duration          int
	Periodic          []Periodic
	Aperiodic         []Aperiodic
	AperiodicDeadline int
}

// NewSet copies the given tasks, assigns contiguous task indices (periodic
// first, then aperiodic, each in declaration order) and validates the result.
//
// A non-positive aperiodicDeadline selects DefaultAperiodicDeadline.
func NewSet(duration int, periodic []Periodic, aperiodic []Aperiodic, aperiodicDeadline int) (*Set, error) {
	if aperiodicDeadline <= 0 {
		aperiodicDeadline = DefaultAperiodicDeadline
	}
	s := &Set{
		Duration:          duration,
		Periodic:          make([]Periodic, len(periodic)),
		Aperiodic:         make([]Aperiodic, len(aperiodic)),
		AperiodicDeadline: aperiodicDeadline,
	}
	copy(s.Periodic, periodic)
	copy(s.Aperiodic, aperiodic)
	for i := range s.Periodic {
		s.Periodic[i].Index = i
	}
	for i := range s.Aperiodic {
		s.Aperiodic[i].Index = len(s.Periodic) + i
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects task sets the engines cannot simulate.
//
// Engines assume a validated set and do not re-check these conditions.
func (s *Set) Validate() error {
	if s == nil {
		return invalidf("nil task set")
	}
	if s.Duration <= 0 {
		return invalidf("duration must be positive (got %d)", s.Duration)
	}
	if s.AperiodicDeadline <= 0 {
		return invalidf("aperiodic deadline must be positive (got %d)", s.AperiodicDeadline)
	}
	if s.Count() == 0 {
		return invalidf("no tasks")
	}
	for i, p := range s.Periodic {
		if strings.TrimSpace(p.ID) == "" {
			return invalidf("periodic[%d]: id is required", i)
		}
		if p.C <= 0 {
			return invalidf("periodic %q: computation time must be positive (got %d)", p.ID, p.C)
		}
		if p.T <= 0 {
			return invalidf("periodic %q: period must be positive (got %d)", p.ID, p.T)
		}
		if p.Index != i {
			return invalidf("periodic %q: index %d out of order", p.ID, p.Index)
		}
	}
	for i, a := range s.Aperiodic {
		if strings.TrimSpace(a.ID) == "" {
			return invalidf("aperiodic[%d]: id is required", i)
		}
		if a.C <= 0 {
			return invalidf("aperiodic %q: computation time must be positive (got %d)", a.ID, a.C)
		}
		if a.R < 0 {
			return invalidf("aperiodic %q: release time must not be negative (got %d)", a.ID, a.R)
		}
		if a.Index != len(s.Periodic)+i {
			return invalidf("aperiodic %q: index %d out of order", a.ID, a.Index)
		}
	}
	return nil
}

// Count returns the total number of tasks.
func (s *Set) Count() int { return len(s.Periodic) + len(s.Aperiodic) }

// Labels returns task labels in task index order.
func (s *Set) Labels() []string {
	out := make([]string, 0, s.Count())
	for _, p := range s.Periodic {
		out = append(out, p.ID)
	}
	for _, a := range s.Aperiodic {
		out = append(out, a.ID)
	}
	return out
}

// Tasks returns all tasks in task index order.
func (s *Set) Tasks() []Task {
	out := make([]Task, 0, s.Count())
	for _, p := range s.Periodic {
		out = append(out, p)
	}
	for _, a := range s.Aperiodic {
		out = append(out, a)
	}
	return out
}

// Jobs returns how many jobs are released before the horizon: one per
// periodic release plus one per aperiodic task released in time.
func (s *Set) Jobs() int {
	n := 0
	for _, p := range s.Periodic {
		if p.T > 0 {
			n += (s.Duration + p.T - 1) / p.T
		}
	}
	for _, a := range s.Aperiodic {
		if a.R < s.Duration {
			n++
		}
	}
	return n
}

// Deadline returns the absolute response deadline of a.
func (s *Set) Deadline(a Aperiodic) int { return a.R + s.AperiodicDeadline }

// Utilization returns the periodic processor demand sum(C/T).
func (s *Set) Utilization() float64 {
	u := 0.0
	for _, p := range s.Periodic {
		u += float64(p.C) / float64(p.T)
	}
	return u
}
