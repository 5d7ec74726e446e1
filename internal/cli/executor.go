package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"rtsched/internal/config"
	"rtsched/internal/report"
	"rtsched/internal/sim"
	"rtsched/internal/taskfile"
)

type Result struct {
	ExitCode int
	Run      *sim.Result
}

// Execute runs a canonical invocation, writing the report to stdout (or
// --output) and progress lines to stderr.
func Execute(ctx context.Context, inv Invocation) (Result, error) {
	return ExecuteTo(ctx, inv, os.Stdout, log.New(os.Stderr, "rtsched: ", 0))
}

// ExecuteTo maps a canonical Invocation to a simulation run.
//
// Responsibilities:
//   - Load configuration and the task set (ExitConfigError on failure).
//   - Run the selected engines and render their reports in report order.
//   - Write the trace file when requested, even when reporting fails.
//   - Translate outcomes to semantic exit codes.
func ExecuteTo(ctx context.Context, inv Invocation, stdout io.Writer, logger *log.Logger) (res Result, execErr error) {
	res.ExitCode = ExitInternalError
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{ExitCode: ExitInternalError}
			execErr = fmt.Errorf("panic: %v", r)
		}
	}()

	cfg := config.Default()
	if inv.ConfigPath != "" {
		loaded, err := config.LoadConfig(inv.ConfigPath)
		if err != nil {
			res.ExitCode = ExitConfigError
			return res, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	set, err := taskfile.Load(inv.TasksPath, cfg.AperiodicDeadline)
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, fmt.Errorf("load tasks: %w", err)
	}
	logger.Printf("loaded %d periodic and %d aperiodic tasks over %d ticks from %s",
		len(set.Periodic), len(set.Aperiodic), set.Duration, inv.TasksPath)

	opts := sim.Options{Engines: inv.Engines, RM: cfg.RMOptions()}
	if inv.Placement != "" {
		opts.RM.Placement = inv.Placement
	}

	run, err := sim.Run(ctx, set, opts)
	if err != nil {
		return res, err
	}
	res.Run = run

	if inv.Trace.Enabled {
		if err := writeTraceFile(inv.Trace.Path, run); err != nil {
			res.ExitCode = ExitConfigError
			return res, fmt.Errorf("write trace: %w", err)
		}
	}

	var buf bytes.Buffer
	for i, o := range run.Outcomes {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := report.Write(&buf, o.Engine, o.Schedule); err != nil {
			return res, fmt.Errorf("render %s report: %w", o.Engine, err)
		}
		logger.Printf("%s: utilization=%.4f missed=%d preemptions=%d trace=%s",
			o.Engine, o.Summary.Utilization, o.Summary.Overdue, o.Summary.Preemptions, o.TraceHash)
	}

	if inv.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(inv.OutputPath), 0o755); err != nil {
			res.ExitCode = ExitConfigError
			return res, fmt.Errorf("create output dir: %w", err)
		}
		if err := writeFileAtomic(inv.OutputPath, buf.Bytes(), 0o644); err != nil {
			res.ExitCode = ExitConfigError
			return res, fmt.Errorf("write output: %w", err)
		}
	} else if _, err := stdout.Write(buf.Bytes()); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}

	res.ExitCode = ExitSuccess
	if inv.FailOnMiss && run.Overdue() > 0 {
		res.ExitCode = ExitDeadlineMiss
	}
	return res, nil
}

// writeTraceFile writes a JSON array holding the canonical trace of every
// outcome, in report order.
func writeTraceFile(path string, run *sim.Result) error {
	if path == "" {
		return fmt.Errorf("trace enabled but path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create trace dir: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, o := range run.Outcomes {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := o.Trace.CanonicalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return writeFileAtomic(path, buf.Bytes(), 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
