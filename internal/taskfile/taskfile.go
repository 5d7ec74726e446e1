// Package taskfile loads task sets from disk.
//
// Supported formats:
//   - text: the plain line format (counts, duration and "id, C, T|r" rows)
//   - yaml: a Document encoded as YAML
//   - json: a Document encoded as JSON, unknown fields rejected
//
// The loader owns all parsing and validation; engines receive a ready *task.Set.
package taskfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"rtsched/internal/task"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath selects a format by file extension. Anything that is not
// .yaml, .yml or .json is read as text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Document is the structured (YAML/JSON) form of a task set.
type Document struct {
	Duration          int              `json:"duration" yaml:"duration"`
	AperiodicDeadline int              `json:"aperiodic_deadline,omitempty" yaml:"aperiodic_deadline,omitempty"`
	Periodic          []task.Periodic  `json:"periodic" yaml:"periodic"`
	Aperiodic         []task.Aperiodic `json:"aperiodic" yaml:"aperiodic"`
}

// Build validates the document into a task set. defaultDeadline applies when
// the document does not set an aperiodic deadline.
func (d Document) Build(defaultDeadline int) (*task.Set, error) {
	deadline := d.AperiodicDeadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	return task.NewSet(d.Duration, d.Periodic, d.Aperiodic, deadline)
}

// Load reads and parses the task set at path.
func Load(path string, defaultDeadline int) (*task.Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return Parse(bytes.NewReader(b), FormatFromPath(path), defaultDeadline)
}

// Parse decodes a task set in the given format.
func Parse(r io.Reader, format Format, defaultDeadline int) (*task.Set, error) {
	var (
		doc Document
		err error
	)
	switch format {
	case FormatText:
		doc, err = parseText(r)
	case FormatYAML:
		doc, err = parseYAML(r)
	case FormatJSON:
		doc, err = parseJSON(r)
	default:
		return nil, &LoadError{Kind: ErrUnsupportedFormat, Msg: string(format)}
	}
	if err != nil {
		return nil, err
	}
	return doc.Build(defaultDeadline)
}

func parseYAML(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, syntaxf(0, "empty yaml document")
		}
		return Document{}, syntaxf(0, "parse yaml: %v", err)
	}
	return doc, nil
}

func parseJSON(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, syntaxf(0, "parse json: %v", err)
	}
	// Ensure there is no trailing garbage (including a second JSON value).
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return Document{}, syntaxf(0, "parse json: trailing data")
		}
		return Document{}, syntaxf(0, "parse json: %v", err)
	}
	return doc, nil
}
