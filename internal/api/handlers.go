package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rtsched/internal/config"
	"rtsched/internal/report"
	"rtsched/internal/rm"
	"rtsched/internal/sim"
	"rtsched/internal/task"
	"rtsched/internal/taskfile"
)

// Limits on the work one HTTP request may ask for.
const (
	MaxDuration = 1 << 20
	MaxTasks    = 256

	// MaxCells bounds duration × task count, the size of the status grid.
	MaxCells = 1 << 22

	// MaxJobs bounds the number of jobs released over the horizon.
	MaxJobs = 1 << 18
)

// SimulateRequest is a task set plus optional run selection and policy
// overrides.
type SimulateRequest struct {
	taskfile.Document

	Engines              []string `json:"engines"`
	RMPlacement          string   `json:"rm_placement"`
	FlagTruncatedWindows *bool    `json:"flag_truncated_windows"`
}

type SimulationHandler struct {
	cfg   *config.Config
	cache sim.Cache
}

func NewSimulationHandler(cfg *config.Config) *SimulationHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	h := &SimulationHandler{cfg: cfg}
	if cfg.Server.CacheSize > 0 {
		h.cache = sim.NewMemoryCache(cfg.Server.CacheSize)
	}
	return h
}

// CheckHealth reports that the service is up, and how many runs are cached.
func (h *SimulationHandler) CheckHealth(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "rtsched",
	}
	if mc, ok := h.cache.(*sim.MemoryCache); ok {
		data["cached_runs"] = mc.Len()
	}
	Success(c, data)
}

// Simulate runs the requested engines and returns one ScheduleView per engine,
// keyed by engine name.
func (h *SimulationHandler) Simulate(c *gin.Context) {
	res, ok := h.run(c)
	if !ok {
		return
	}
	views := make(map[string]ScheduleView, len(res.Outcomes))
	for _, o := range res.Outcomes {
		views[o.Engine] = NewScheduleView(o)
	}
	Success(c, views)
}

// SimulateReport runs the requested engines and returns the rendered text report.
func (h *SimulationHandler) SimulateReport(c *gin.Context) {
	res, ok := h.run(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	for i, o := range res.Outcomes {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := report.Write(&buf, o.Engine, o.Schedule); err != nil {
			Error(c, ERROR, err.Error())
			return
		}
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// run binds and validates the request and runs the simulation. On failure it
// has already written the error response.
func (h *SimulationHandler) run(c *gin.Context) (*sim.Result, bool) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, VALIDATION_ERROR, err.Error())
		return nil, false
	}
	if req.Duration > MaxDuration {
		Error(c, VALIDATION_ERROR, fmt.Sprintf("duration %d exceeds limit %d", req.Duration, MaxDuration))
		return nil, false
	}

	opts, err := h.options(req)
	if err != nil {
		Error(c, VALIDATION_ERROR, err.Error())
		return nil, false
	}
	if n := len(req.Periodic) + len(req.Aperiodic); n > MaxTasks {
		Error(c, VALIDATION_ERROR, fmt.Sprintf("%d tasks exceeds limit %d", n, MaxTasks))
		return nil, false
	}
	set, err := req.Build(h.cfg.AperiodicDeadline)
	if err != nil {
		Error(c, VALIDATION_ERROR, err.Error())
		return nil, false
	}
	if err := checkWorkload(set); err != nil {
		Error(c, VALIDATION_ERROR, err.Error())
		return nil, false
	}

	res, hit, err := sim.RunCached(c.Request.Context(), h.cache, set, opts)
	if err != nil {
		if errors.Is(err, task.ErrInvalidTaskSet) {
			Error(c, VALIDATION_ERROR, err.Error())
			return nil, false
		}
		if errors.Is(err, context.Canceled) {
			Error(c, ERROR, "request cancelled")
			return nil, false
		}
		Error(c, ERROR, err.Error())
		return nil, false
	}
	if hit {
		c.Header("X-Cache", "hit")
	} else {
		c.Header("X-Cache", "miss")
	}
	return res, true
}

// checkWorkload rejects sets whose grid or job count exceeds the request limits.
func checkWorkload(set *task.Set) error {
	if cells := set.Duration * set.Count(); cells > MaxCells {
		return fmt.Errorf("duration × tasks = %d exceeds limit %d", cells, MaxCells)
	}
	if jobs := set.Jobs(); jobs > MaxJobs {
		return fmt.Errorf("%d released jobs exceeds limit %d", jobs, MaxJobs)
	}
	return nil
}

func (h *SimulationHandler) options(req SimulateRequest) (sim.Options, error) {
	opts := sim.Options{RM: h.cfg.RMOptions()}
	if len(req.Engines) > 0 {
		var names []string
		for _, raw := range req.Engines {
			parsed, err := sim.ParseEngines(raw)
			if err != nil {
				return sim.Options{}, err
			}
			names = append(names, parsed...)
		}
		opts.Engines = dedupe(names)
	}
	if req.RMPlacement != "" {
		p, err := rm.ParsePlacement(req.RMPlacement)
		if err != nil {
			return sim.Options{}, err
		}
		opts.RM.Placement = p
	}
	if req.FlagTruncatedWindows != nil {
		opts.RM.FlagTruncatedWindows = *req.FlagTruncatedWindows
	}
	return opts, nil
}

// dedupe keeps engines in report order without repeats.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for _, n := range sim.Engines {
		if seen[n] {
			out = append(out, n)
		}
	}
	return out
}
