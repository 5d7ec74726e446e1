package task

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewSet_AssignsContiguousIndices_PeriodicFirst(t *testing.T) {
	s, err := NewSet(10,
		[]Periodic{{ID: "A", C: 1, T: 2}, {ID: "B", C: 1, T: 4}},
		[]Aperiodic{{ID: "X", C: 2, R: 5}},
		0,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Periodic[0].Index != 0 || s.Periodic[1].Index != 1 || s.Aperiodic[0].Index != 2 {
		t.Fatalf("unexpected indices: %+v %+v", s.Periodic, s.Aperiodic)
	}
	if s.Aperiodic[0].Column() != 3 {
		t.Fatalf("expected column 3, got %d", s.Aperiodic[0].Column())
	}
	if s.Count() != 3 {
		t.Fatalf("expected 3 tasks, got %d", s.Count())
	}
	if got := s.Labels(); !reflect.DeepEqual(got, []string{"A", "B", "X"}) {
		t.Fatalf("unexpected labels: %v", got)
	}
	if s.AperiodicDeadline != DefaultAperiodicDeadline {
		t.Fatalf("expected default deadline, got %d", s.AperiodicDeadline)
	}
	if got := s.Deadline(s.Aperiodic[0]); got != 505 {
		t.Fatalf("expected absolute deadline 505, got %d", got)
	}
}

func TestNewSet_DoesNotAliasCallerSlices(t *testing.T) {
	periodic := []Periodic{{ID: "A", C: 1, T: 2}}
	s, err := NewSet(4, periodic, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	periodic[0].C = 99
	if s.Periodic[0].C != 1 {
		t.Fatalf("task set was mutated through caller slice")
	}
}

func TestNewSet_RejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name      string
		duration  int
		periodic  []Periodic
		aperiodic []Aperiodic
	}{
		{"zero duration", 0, []Periodic{{ID: "A", C: 1, T: 2}}, nil},
		{"no tasks", 5, nil, nil},
		{"zero period", 5, []Periodic{{ID: "A", C: 1, T: 0}}, nil},
		{"zero computation", 5, []Periodic{{ID: "A", C: 0, T: 2}}, nil},
		{"empty id", 5, []Periodic{{ID: " ", C: 1, T: 2}}, nil},
		{"negative release", 5, nil, []Aperiodic{{ID: "X", C: 1, R: -1}}},
		{"aperiodic zero computation", 5, nil, []Aperiodic{{ID: "X", C: 0, R: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSet(tc.duration, tc.periodic, tc.aperiodic, 0)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrInvalidTaskSet) {
				t.Fatalf("expected ErrInvalidTaskSet, got %v", err)
			}
			var se *SetError
			if !errors.As(err, &se) || se.Msg == "" {
				t.Fatalf("expected SetError with message, got %#v", err)
			}
		})
	}
}

func TestPeriodicReleases_StopBeforeHorizon(t *testing.T) {
	p := Periodic{ID: "A", C: 1, T: 3}
	if got := p.Releases(10); !reflect.DeepEqual(got, []int{0, 3, 6, 9}) {
		t.Fatalf("unexpected releases: %v", got)
	}
	if got := p.Releases(9); !reflect.DeepEqual(got, []int{0, 3, 6}) {
		t.Fatalf("unexpected releases: %v", got)
	}
}

func TestTasks_SumTypeDispatch(t *testing.T) {
	s, err := NewSet(10, []Periodic{{ID: "A", C: 1, T: 2}}, []Aperiodic{{ID: "X", C: 2, R: 5}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []string
	for _, tk := range s.Tasks() {
		switch v := tk.(type) {
		case Periodic:
			kinds = append(kinds, "periodic:"+v.ID)
		case Aperiodic:
			kinds = append(kinds, "aperiodic:"+v.ID)
		}
	}
	if !reflect.DeepEqual(kinds, []string{"periodic:A", "aperiodic:X"}) {
		t.Fatalf("unexpected dispatch: %v", kinds)
	}
}

func TestUtilization_SumsPeriodicDemand(t *testing.T) {
	s, err := NewSet(8, []Periodic{{ID: "A", C: 1, T: 2}, {ID: "B", C: 1, T: 4}}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Utilization(); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}

func TestJobs_CountsReleasesBeforeHorizon(t *testing.T) {
	s, err := NewSet(9,
		[]Periodic{{ID: "A", C: 1, T: 3}, {ID: "B", C: 1, T: 4}},
		[]Aperiodic{{ID: "X", C: 1, R: 8}, {ID: "Y", C: 1, R: 9}},
		0,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A releases at 0,3,6; B at 0,4,8; only X is released in time.
	if got := s.Jobs(); got != 7 {
		t.Fatalf("expected 7 jobs, got %d", got)
	}
}
