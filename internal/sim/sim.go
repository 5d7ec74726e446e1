// Package sim drives the scheduling engines over one task set.
//
// Each engine allocates and owns its own Schedule and only reads the task set,
// so the selected engines run concurrently without locking.
package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"rtsched/internal/edf"
	"rtsched/internal/rm"
	"rtsched/internal/schedule"
	"rtsched/internal/task"
	"rtsched/internal/trace"
)

// Engines lists every engine name in report order.
var Engines = []string{rm.Name, edf.Name}

// ParseEngines accepts "both" (or empty), or a comma-separated list of engine
// names. The result is deduplicated and in report order.
func ParseEngines(raw string) ([]string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "both" {
		return append([]string(nil), Engines...), nil
	}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if rank(name) < 0 {
			return nil, fmt.Errorf("unknown engine %q (expected %s or both)", name, strings.Join(Engines, "|"))
		}
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out, nil
}

func rank(name string) int {
	for i, n := range Engines {
		if n == name {
			return i
		}
	}
	return -1
}

type Options struct {
	// Engines selects which engines run; empty means all of them.
	Engines []string

	// RM configures the RM engine. Its Sink is replaced per run.
	RM rm.Options
}

// Outcome is the product of one engine run.
type Outcome struct {
	Engine    string
	Schedule  *schedule.Schedule
	Summary   schedule.Summary
	Trace     trace.ExecutionTrace
	TraceHash string
}

// Result holds one Outcome per selected engine, in report order.
type Result struct {
	Outcomes []Outcome
}

// Overdue returns the total number of deadline misses across all outcomes.
func (r *Result) Overdue() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Summary.Overdue
	}
	return n
}

// Run simulates set with every selected engine.
//
// Cancellation is observed before each engine starts and after all have
// finished; an engine run itself is never interrupted.
func Run(ctx context.Context, set *task.Set, opts Options) (*Result, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	names := opts.Engines
	if len(names) == 0 {
		names = Engines
	}
	for _, name := range names {
		if rank(name) < 0 {
			return nil, fmt.Errorf("unknown engine %q", name)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	outcomes := make([]Outcome, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[i] = fmt.Errorf("simulation cancelled: %w", ctx.Err())
				return
			}
			outcomes[i], errs[i] = runEngine(set, name, opts)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}
	sort.SliceStable(outcomes, func(i, j int) bool { return rank(outcomes[i].Engine) < rank(outcomes[j].Engine) })
	return &Result{Outcomes: outcomes}, nil
}

func runEngine(set *task.Set, name string, opts Options) (Outcome, error) {
	rec := trace.NewRecorder()
	var s *schedule.Schedule
	switch name {
	case edf.Name:
		s = edf.SimulateWithOptions(set, edf.Options{Sink: rec})
	case rm.Name:
		o := opts.RM
		o.Sink = rec
		s = rm.SimulateWithOptions(set, o)
	}

	tr := trace.FromSchedule(name, s)
	tr.Merge(rec.Snapshot())
	hash, err := tr.Hash()
	if err != nil {
		return Outcome{}, fmt.Errorf("%s trace: %w", name, err)
	}
	return Outcome{
		Engine:    name,
		Schedule:  s,
		Summary:   s.Summarize(),
		Trace:     tr,
		TraceHash: hash,
	}, nil
}
