// Package report renders a populated schedule as a text table followed by
// summary statistics.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"rtsched/internal/edf"
	"rtsched/internal/rm"
	"rtsched/internal/schedule"
)

// Title returns the banner text for an engine name.
func Title(engine string) string {
	switch engine {
	case rm.Name:
		return "Rate Monotonic"
	case edf.Name:
		return "Earliest Deadline First"
	default:
		return engine
	}
}

// Cell renders one (tick, task) cell: the status glyph, then '*' when the
// task executed at tick.
func Cell(s *schedule.Schedule, tick, taskIndex int) string {
	var b strings.Builder
	b.WriteString(s.Flags.At(tick, taskIndex).Glyph())
	if s.ActiveTask[tick] == taskIndex+1 {
		b.WriteByte('*')
	}
	return strings.TrimSpace(b.String())
}

// Rows returns one table row per tick: the tick number, then one cell per task.
func Rows(s *schedule.Schedule) [][]string {
	rows := make([][]string, 0, s.Duration)
	for tick := 0; tick < s.Duration; tick++ {
		row := make([]string, 0, s.Tasks+1)
		row = append(row, strconv.Itoa(tick))
		for idx := 0; idx < s.Tasks; idx++ {
			row = append(row, Cell(s, tick, idx))
		}
		rows = append(rows, row)
	}
	return rows
}

// Write renders the banner, the schedule table and the summary lines.
func Write(w io.Writer, engine string, s *schedule.Schedule) error {
	sum := s.Summarize()

	if _, err := fmt.Fprintf(w, "------------- %s --------------\n", Title(engine)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeader(append([]string{"Time"}, s.Header...))
	table.AppendBulk(Rows(s))

	footer := make([]string, 0, s.Tasks+1)
	footer = append(footer, "dCount\npCount")
	for _, ts := range sum.PerTask {
		footer = append(footer, fmt.Sprintf("%d\n%d", ts.Overdue, ts.Preemptions))
	}
	table.SetFooter(footer)
	table.Render()

	if _, err := fmt.Fprintf(w, "Utilization: %.4f\nMissed Deadlines: %d\nPreemption Count: %d\nPeriodic Demand: %.4f\n",
		sum.Utilization, sum.Overdue, sum.Preemptions, sum.Demand); err != nil {
		return err
	}
	for _, ts := range sum.PerTask {
		if ts.Completions == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "Average Response (%s): %.2f\n", ts.ID, ts.AvgResponse); err != nil {
			return err
		}
	}
	return nil
}
