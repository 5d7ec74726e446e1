package api

import (
	"strings"

	"rtsched/internal/schedule"
	"rtsched/internal/sim"
)

// ScheduleView is the JSON form of one engine outcome.
type ScheduleView struct {
	Engine     string           `json:"engine"`
	Duration   int              `json:"duration"`
	Tasks      int              `json:"tasks"`
	Header     []string         `json:"header"`
	ActiveTask []int            `json:"active_task"`
	Flags      []string         `json:"flags"`
	Summary    schedule.Summary `json:"summary"`
	TraceHash  string           `json:"trace_hash"`
}

// NewScheduleView flattens an outcome. Flags holds one string per tick with
// one status glyph per task, in task index order.
func NewScheduleView(o sim.Outcome) ScheduleView {
	s := o.Schedule
	flags := make([]string, s.Duration)
	for tick := 0; tick < s.Duration; tick++ {
		var b strings.Builder
		for _, st := range s.Flags.Row(tick) {
			b.WriteString(st.Glyph())
		}
		flags[tick] = b.String()
	}
	return ScheduleView{
		Engine:     o.Engine,
		Duration:   s.Duration,
		Tasks:      s.Tasks,
		Header:     append([]string(nil), s.Header...),
		ActiveTask: append([]int(nil), s.ActiveTask...),
		Flags:      flags,
		Summary:    o.Summary,
		TraceHash:  o.TraceHash,
	}
}
