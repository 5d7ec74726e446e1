package taskfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"rtsched/internal/task"
)

// lineReader yields non-blank, trimmed lines with their 1-based numbers.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next() (string, int, bool) {
	for lr.sc.Scan() {
		lr.line++
		if s := strings.TrimSpace(lr.sc.Text()); s != "" {
			return s, lr.line, true
		}
	}
	return "", lr.line + 1, false
}

// parseText reads the plain format:
//
//	<periodic count>
//	<duration>
//	<id>, <C>, <T>      (periodic count rows)
//	<aperiodic count>
//	<id>, <C>, <r>      (aperiodic count rows)
//
// Blank lines are ignored. A missing aperiodic section means no aperiodic tasks.
func parseText(r io.Reader) (Document, error) {
	lr := &lineReader{sc: bufio.NewScanner(r)}
	var doc Document

	pCount, err := lr.count("periodic task count", true)
	if err != nil {
		return Document{}, err
	}
	s, n, ok := lr.next()
	if !ok {
		return Document{}, syntaxf(n, "missing duration")
	}
	if doc.Duration, err = atoi(s, n, "duration"); err != nil {
		return Document{}, err
	}

	for i := 0; i < pCount; i++ {
		id, c, t, err := lr.row("periodic")
		if err != nil {
			return Document{}, err
		}
		doc.Periodic = append(doc.Periodic, task.Periodic{ID: id, C: c, T: t})
	}

	aCount, err := lr.count("aperiodic task count", false)
	if err != nil {
		return Document{}, err
	}
	for i := 0; i < aCount; i++ {
		id, c, rel, err := lr.row("aperiodic")
		if err != nil {
			return Document{}, err
		}
		doc.Aperiodic = append(doc.Aperiodic, task.Aperiodic{ID: id, C: c, R: rel})
	}

	if s, n, ok := lr.next(); ok {
		return Document{}, syntaxf(n, "unexpected trailing content %q", s)
	}
	if err := lr.sc.Err(); err != nil {
		return Document{}, syntaxf(0, "read: %v", err)
	}
	return doc, nil
}

func (lr *lineReader) count(what string, required bool) (int, error) {
	s, n, ok := lr.next()
	if !ok {
		if required {
			return 0, syntaxf(n, "missing %s", what)
		}
		return 0, nil
	}
	v, err := atoi(s, n, what)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, syntaxf(n, "%s must not be negative", what)
	}
	return v, nil
}

// row parses "<id>, <int>, <int>". Spaces around fields are ignored.
func (lr *lineReader) row(kind string) (string, int, int, error) {
	s, n, ok := lr.next()
	if !ok {
		return "", 0, 0, syntaxf(n, "missing %s task row", kind)
	}
	fields := strings.Split(s, ",")
	if len(fields) == 4 && strings.TrimSpace(fields[3]) == "" {
		fields = fields[:3]
	}
	if len(fields) != 3 {
		return "", 0, 0, syntaxf(n, "%s task row needs 3 fields, got %d", kind, len(fields))
	}
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return "", 0, 0, syntaxf(n, "%s task id is empty", kind)
	}
	a, err := atoi(fields[1], n, "computation time")
	if err != nil {
		return "", 0, 0, err
	}
	b, err := atoi(fields[2], n, kind+" timing")
	if err != nil {
		return "", 0, 0, err
	}
	return id, a, b, nil
}

func atoi(s string, line int, what string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, syntaxf(line, "invalid %s %q", what, strings.TrimSpace(s))
	}
	return v, nil
}
