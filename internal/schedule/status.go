package schedule

// Status is the single status mark stored per (tick, task) cell.
//
// The byte values are the glyphs the reporter prints; do not renumber.
type Status byte

const (
	StatusNone      Status = ' '
	StatusReleased  Status = 'r'
	StatusPreempted Status = 'p'
	StatusOverdue   Status = 'd'
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusReleased:
		return "released"
	case StatusPreempted:
		return "preempted"
	case StatusOverdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// Glyph returns the one-character table representation of s.
func (s Status) Glyph() string {
	if s == 0 {
		return string(StatusNone)
	}
	return string(rune(s))
}
