// Package trace records the logical outcome of a simulation run as a canonical,
// hashable event list.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"rtsched/internal/schedule"
)

// ExecutionTrace is the canonical, deterministic record of one engine run.
//
// Invariants:
//   - Events are ordered by Canonicalize(), never by recording order.
//   - Only logical facts (tick, task, kind) are captured; no wall-clock values.
//
// Two runs of the same engine over the same task set must produce
// byte-identical CanonicalJSON output.
type ExecutionTrace struct {
	Engine   string
	Duration int
	Events   []TraceEvent
}

// TraceEventKind is the stable discriminator for TraceEvent.
// The string values are part of the canonical bytes; do not rename.
type TraceEventKind string

const (
	EventReleased  TraceEventKind = "Released"
	EventExecuted  TraceEventKind = "Executed"
	EventPreempted TraceEventKind = "Preempted"
	EventCompleted TraceEventKind = "Completed"
	EventOverdue   TraceEventKind = "Overdue"
)

// TraceEvent is a single logical fact about one task at one tick.
type TraceEvent struct {
	Kind TraceEventKind

	Tick int

	// Task is the task index; TaskID is its label.
	Task   int
	TaskID string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.Engine == "" {
		return errors.New("engine is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Tick < 0 || (t.Duration > 0 && e.Tick >= t.Duration) {
			return fmt.Errorf("events[%d].tick %d outside [0,%d)", i, e.Tick, t.Duration)
		}
		if e.Task < 0 {
			return fmt.Errorf("events[%d].task must not be negative", i)
		}
		if e.TaskID == "" {
			return fmt.Errorf("events[%d].taskId is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

// Canonicalize stably sorts events by (tick, task, kindOrder).
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		if a.Task != b.Task {
			return a.Task < b.Task
		}
		return kindOrder(a.Kind) < kindOrder(b.Kind)
	})
}

// kindOrder follows the order in which an engine reaches each fact within a tick.
func kindOrder(k TraceEventKind) int {
	switch k {
	case EventReleased:
		return 10
	case EventExecuted:
		return 20
	case EventPreempted:
		return 30
	case EventCompleted:
		return 40
	case EventOverdue:
		return 50
	default:
		return 1000
	}
}

// FromSchedule derives the trace of a populated schedule: one Executed event
// per busy tick and one event per non-blank status cell.
func FromSchedule(engine string, s *schedule.Schedule) ExecutionTrace {
	tr := ExecutionTrace{Engine: engine, Duration: s.Duration}
	for tick := 0; tick < s.Duration; tick++ {
		if col := s.ActiveTask[tick]; col != schedule.Idle {
			tr.Events = append(tr.Events, TraceEvent{Kind: EventExecuted, Tick: tick, Task: col - 1, TaskID: s.Header[col-1]})
		}
		for idx, st := range s.Flags.Row(tick) {
			kind, ok := statusKind(st)
			if !ok {
				continue
			}
			tr.Events = append(tr.Events, TraceEvent{Kind: kind, Tick: tick, Task: idx, TaskID: s.Header[idx]})
		}
	}
	tr.Canonicalize()
	return tr
}

func statusKind(st schedule.Status) (TraceEventKind, bool) {
	switch st {
	case schedule.StatusReleased:
		return EventReleased, true
	case schedule.StatusPreempted:
		return EventPreempted, true
	case schedule.StatusOverdue:
		return EventOverdue, true
	default:
		return "", false
	}
}

// Merge appends events and re-canonicalizes.
func (t *ExecutionTrace) Merge(events []TraceEvent) {
	t.Events = append(t.Events, events...)
	t.Canonicalize()
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slices.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	copyTrace := ExecutionTrace{Engine: t.Engine, Duration: t.Duration}
	copyTrace.Events = make([]TraceEvent, len(t.Events))
	copy(copyTrace.Events, t.Events)
	copyTrace.Canonicalize()
	if err := copyTrace.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&copyTrace)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t ExecutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes field ordering.
func (t ExecutionTrace) MarshalJSON() ([]byte, error) {
	if t.Engine == "" {
		return nil, errors.New("engine is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"engine\":")
	eb, _ := json.Marshal(t.Engine)
	buf.Write(eb)
	buf.WriteString(fmt.Sprintf(",\"duration\":%d", t.Duration))

	buf.WriteString(",\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field ordering: tick, kind, task, taskId.
func (e TraceEvent) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("{\"tick\":%d,\"kind\":", e.Tick))
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)
	buf.WriteString(fmt.Sprintf(",\"task\":%d,\"taskId\":", e.Task))
	tb, _ := json.Marshal(e.TaskID)
	buf.Write(tb)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
