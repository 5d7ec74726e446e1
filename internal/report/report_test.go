package report

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"rtsched/internal/edf"
	"rtsched/internal/rm"
	"rtsched/internal/task"
)

func mustSet(t *testing.T, duration int, p []task.Periodic, a []task.Aperiodic, d int) *task.Set {
	t.Helper()
	set, err := task.NewSet(duration, p, a, d)
	if err != nil {
		t.Fatalf("task set: %v", err)
	}
	return set
}

func TestRows_GlyphThenStar(t *testing.T) {
	set := mustSet(t, 4, []task.Periodic{{ID: "A", C: 1, T: 2}}, nil, 0)
	s := rm.Simulate(set)

	want := [][]string{
		{"0", "r*"},
		{"1", ""},
		{"2", "r*"},
		{"3", ""},
	}
	if got := Rows(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows: got %q want %q", got, want)
	}
}

func TestCell_ActiveWithoutFlag(t *testing.T) {
	set := mustSet(t, 2, []task.Periodic{{ID: "A", C: 2, T: 2}}, nil, 0)
	s := edf.Simulate(set)
	if got := Cell(s, 1, 0); got != "*" {
		t.Fatalf("expected bare star, got %q", got)
	}
}

func TestWrite_SummaryLines(t *testing.T) {
	set := mustSet(t, 6, []task.Periodic{{ID: "A", C: 1, T: 2}}, nil, 0)
	var buf bytes.Buffer
	if err := Write(&buf, rm.Name, rm.Simulate(set)); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"------------- Rate Monotonic --------------\n",
		"Time",
		"dCount",
		"pCount",
		"Utilization: 0.5000\n",
		"Missed Deadlines: 0\n",
		"Preemption Count: 0\n",
		"Periodic Demand: 0.5000\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Average Response") {
		t.Fatalf("no aperiodic tasks, expected no response lines:\n%s", out)
	}
}

func TestWrite_CountsMissesAndAperiodicResponse(t *testing.T) {
	set := mustSet(t, 6,
		[]task.Periodic{{ID: "A", C: 2, T: 2}, {ID: "B", C: 1, T: 3}},
		[]task.Aperiodic{{ID: "X", C: 1, R: 0}},
		100,
	)
	s := edf.Simulate(set)
	var buf bytes.Buffer
	if err := Write(&buf, edf.Name, s); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	sum := s.Summarize()
	if sum.Overdue == 0 {
		t.Fatalf("expected an overloaded set to miss deadlines")
	}
	for _, want := range []string{
		"------------- Earliest Deadline First --------------\n",
		"Utilization: 1.0000\n",
		"Missed Deadlines: " + strconv.Itoa(sum.Overdue) + "\n",
		"Preemption Count: " + strconv.Itoa(sum.Preemptions) + "\n",
		"Average Response (X): ",
		"Periodic Demand: 1.3333\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTitle_UnknownEnginePassesThrough(t *testing.T) {
	if got := Title("fifo"); got != "fifo" {
		t.Fatalf("got %q", got)
	}
}
