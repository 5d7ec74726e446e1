package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rtsched/internal/rm"
	"rtsched/internal/sim"
)

const (
	ExitSuccess           = 0
	ExitDeadlineMiss      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

type TraceConfig struct {
	Enabled bool
	Path    string
}

// Invocation is the fully canonicalized description of a run.
//
// All paths are normalized (Clean). When WorkDir is set, relative paths are
// resolved against it; WorkDir itself must then be absolute.
type Invocation struct {
	TasksPath  string
	OutputPath string
	ConfigPath string
	WorkDir    string
	Engines    []string
	Trace      TraceConfig

	// Placement overrides the configured RM placement when non-empty.
	Placement rm.Placement

	// FailOnMiss turns any deadline miss into ExitDeadlineMiss.
	FailOnMiss bool
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a canonical Invocation.
//
// It does not read environment variables; configuration only comes from
// flags and the optional --config file.
func ParseInvocation(args []string) (Invocation, error) {
	fs := flag.NewFlagSet("rtsched", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var (
		tasksPath  string
		outputPath string
		tracePath  string
		configPath string
		workDir    string
		engines    string
		placement  string
		failOnMiss bool
	)

	fs.StringVar(&tasksPath, "tasks", "", "Task set file (.txt, .yaml, .yml or .json). Required.")
	fs.StringVar(&outputPath, "output", "", "Report output path (default stdout).")
	fs.StringVar(&tracePath, "trace", "", "Trace output path (optional).")
	fs.StringVar(&configPath, "config", "", "YAML config path (optional).")
	fs.StringVar(&workDir, "workdir", "", "Absolute directory relative paths are resolved against.")
	fs.StringVar(&engines, "engine", "both", "Engines to run: both|edf|rm")
	fs.StringVar(&placement, "rm-placement", "", "RM window placement: asap|alap (default from config)")
	fs.BoolVar(&failOnMiss, "fail-on-miss", false, "Exit with status 1 when any deadline is missed.")

	if err := fs.Parse(args); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	if workDir != "" {
		workDir = filepath.Clean(workDir)
		if !filepath.IsAbs(workDir) {
			return Invocation{}, invalidInvocationf("--workdir must be an absolute path (got %q)", workDir)
		}
	}
	if strings.TrimSpace(tasksPath) == "" {
		return Invocation{}, invalidInvocationf("--tasks is required")
	}

	inv := Invocation{WorkDir: workDir, FailOnMiss: failOnMiss}

	var err error
	if inv.Engines, err = sim.ParseEngines(engines); err != nil {
		return Invocation{}, invalidInvocationf("invalid --engine: %v", err)
	}
	if strings.TrimSpace(placement) != "" {
		if inv.Placement, err = rm.ParsePlacement(placement); err != nil {
			return Invocation{}, invalidInvocationf("invalid --rm-placement: %v", err)
		}
	}

	if inv.TasksPath, err = resolveUnderWorkDir(workDir, tasksPath); err != nil {
		return Invocation{}, err
	}
	if outputPath != "" {
		if inv.OutputPath, err = resolveUnderWorkDir(workDir, outputPath); err != nil {
			return Invocation{}, err
		}
	}
	if configPath != "" {
		if inv.ConfigPath, err = resolveUnderWorkDir(workDir, configPath); err != nil {
			return Invocation{}, err
		}
	}
	if strings.TrimSpace(tracePath) != "" {
		resolvedTrace, err := resolveUnderWorkDir(workDir, tracePath)
		if err != nil {
			return Invocation{}, err
		}
		inv.Trace = TraceConfig{Enabled: true, Path: resolvedTrace}
	}

	return inv, nil
}

func resolveUnderWorkDir(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("path must not be empty")
	}
	clean := filepath.Clean(p)
	if clean == "." {
		return "", invalidInvocationf("path must not be '.'")
	}
	if filepath.IsAbs(clean) || workDir == "" {
		return clean, nil
	}
	return filepath.Clean(filepath.Join(workDir, clean)), nil
}

// ExitCode extracts a semantic exit code from a ParseInvocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
