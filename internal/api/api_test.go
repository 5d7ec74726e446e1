package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"rtsched/internal/config"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, config.Default())
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type simulateResponse struct {
	Code int                     `json:"code"`
	Data map[string]ScheduleView `json:"data"`
	Msg  string                  `json:"message"`
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Code != SUCCESS || resp.Data["status"] != "ok" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if n, ok := resp.Data["cached_runs"].(float64); !ok || n != 0 {
		t.Fatalf("expected empty cache, got %v", resp.Data["cached_runs"])
	}
}

type healthResponse struct {
	Code int                    `json:"code"`
	Data map[string]interface{} `json:"data"`
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) healthResponse {
	t.Helper()
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSimulate_BothEngines(t *testing.T) {
	body := `{"duration":6,"periodic":[{"id":"A","c":1,"t":2}]}`
	w := do(t, newRouter(), http.MethodPost, "/api/v1/simulate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var resp simulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != SUCCESS || len(resp.Data) != 2 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	for _, engine := range []string{"edf", "rm"} {
		v, ok := resp.Data[engine]
		if !ok {
			t.Fatalf("missing %s view", engine)
		}
		if !reflect.DeepEqual(v.ActiveTask, []int{1, 0, 1, 0, 1, 0}) {
			t.Fatalf("%s active: %v", engine, v.ActiveTask)
		}
		if !reflect.DeepEqual(v.Flags, []string{"r", " ", "r", " ", "r", " "}) {
			t.Fatalf("%s flags: %q", engine, v.Flags)
		}
		if v.Summary.Utilization != 0.5 || v.Summary.Demand != 0.5 || len(v.TraceHash) != 64 {
			t.Fatalf("%s summary/hash: %+v %q", engine, v.Summary, v.TraceHash)
		}
	}
}

func TestSimulate_EngineSelectionAndOverrides(t *testing.T) {
	body := `{"duration":6,"periodic":[{"id":"A","c":3,"t":4}],"engines":["rm"],"rm_placement":"alap","flag_truncated_windows":true}`
	w := do(t, newRouter(), http.MethodPost, "/api/v1/simulate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var resp simulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Data["edf"]; ok || len(resp.Data) != 1 {
		t.Fatalf("expected only rm view: %s", w.Body.String())
	}
	v := resp.Data["rm"]
	if v.ActiveTask[0] != 0 {
		t.Fatalf("expected alap placement, got %v", v.ActiveTask)
	}
	if v.Summary.Overdue != 1 {
		t.Fatalf("expected truncated window miss, got %d", v.Summary.Overdue)
	}
}

func TestSimulate_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{"duration":`,
		"zero duration":    `{"duration":0,"periodic":[{"id":"A","c":1,"t":2}]}`,
		"bad period":       `{"duration":4,"periodic":[{"id":"A","c":1,"t":0}]}`,
		"no tasks":         `{"duration":4}`,
		"unknown engine":   `{"duration":4,"periodic":[{"id":"A","c":1,"t":2}],"engines":["fifo"]}`,
		"bad placement":    `{"duration":4,"periodic":[{"id":"A","c":1,"t":2}],"rm_placement":"mid"}`,
		"horizon too long": `{"duration":2000000,"periodic":[{"id":"A","c":1,"t":2}]}`,
	}
	r := newRouter()
	for name, body := range cases {
		w := do(t, r, http.MethodPost, "/api/v1/simulate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", name, w.Code, w.Body.String())
		}
		var resp Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if resp.Code != VALIDATION_ERROR || resp.Msg == "" {
			t.Fatalf("%s: unexpected body %s", name, w.Body.String())
		}
	}
}

func TestSimulateReport_ReturnsText(t *testing.T) {
	body := `{"duration":6,"periodic":[{"id":"A","c":1,"t":2}],"aperiodic":[{"id":"X","c":1,"r":1}]}`
	w := do(t, newRouter(), http.MethodPost, "/api/v1/simulate/report", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type: %q", ct)
	}
	out := w.Body.String()
	rmAt := strings.Index(out, "Rate Monotonic")
	edfAt := strings.Index(out, "Earliest Deadline First")
	if rmAt < 0 || edfAt < rmAt {
		t.Fatalf("expected RM then EDF:\n%s", out)
	}
	if !strings.Contains(out, "Utilization: 0.6667") {
		t.Fatalf("expected utilization line:\n%s", out)
	}
}

func TestSimulate_IsDeterministic(t *testing.T) {
	body := `{"duration":40,"periodic":[{"id":"A","c":1,"t":4},{"id":"B","c":2,"t":5}],"aperiodic":[{"id":"X","c":4,"r":3}]}`
	r := newRouter()
	first := do(t, r, http.MethodPost, "/api/v1/simulate", body).Body.Bytes()
	second := do(t, r, http.MethodPost, "/api/v1/simulate", body).Body.Bytes()
	if !bytes.Equal(first, second) {
		t.Fatalf("identical requests produced different bodies")
	}
}

func TestNoRoute(t *testing.T) {
	w := do(t, newRouter(), http.MethodGet, "/api/v1/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestSimulate_RepeatedRequestServedFromCache(t *testing.T) {
	body := `{"duration":12,"periodic":[{"id":"A","c":1,"t":3}]}`
	r := newRouter()
	first := do(t, r, http.MethodPost, "/api/v1/simulate", body)
	second := do(t, r, http.MethodPost, "/api/v1/simulate", body)
	if first.Header().Get("X-Cache") != "miss" || second.Header().Get("X-Cache") != "hit" {
		t.Fatalf("cache headers: %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("cached response differs")
	}
	health := decodeHealth(t, do(t, r, http.MethodGet, "/api/v1/health", ""))
	if n, _ := health.Data["cached_runs"].(float64); n != 1 {
		t.Fatalf("expected one cached run, got %v", health.Data["cached_runs"])
	}

	cfg := config.Default()
	cfg.Server.CacheSize = 0
	gin.SetMode(gin.TestMode)
	uncached := gin.New()
	SetupRoutes(uncached, cfg)
	do(t, uncached, http.MethodPost, "/api/v1/simulate", body)
	if got := do(t, uncached, http.MethodPost, "/api/v1/simulate", body).Header().Get("X-Cache"); got != "miss" {
		t.Fatalf("expected no caching when disabled, got %q", got)
	}
	if _, ok := decodeHealth(t, do(t, uncached, http.MethodGet, "/api/v1/health", "")).Data["cached_runs"]; ok {
		t.Fatalf("expected no cache count when disabled")
	}
}

func periodicBody(duration, tasks, period int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"duration":%d,"engines":["edf"],"periodic":[`, duration)
	for i := 0; i < tasks; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":"T%d","c":1,"t":%d}`, i, period)
	}
	b.WriteString("]}")
	return b.String()
}

func TestSimulate_RejectsOversizedWorkloads(t *testing.T) {
	cases := map[string]string{
		"too many tasks": periodicBody(4, MaxTasks+1, 2),
		"grid too large": periodicBody(MaxDuration, 8, 1),
		"too many jobs":  periodicBody(MaxCells/8, 8, 1),
	}
	r := newRouter()
	for name, body := range cases {
		w := do(t, r, http.MethodPost, "/api/v1/simulate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, w.Code)
		}
		var resp Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if resp.Code != VALIDATION_ERROR || !strings.Contains(resp.Msg, "exceeds limit") {
			t.Fatalf("%s: unexpected body %s", name, w.Body.String())
		}
	}

	if w := do(t, r, http.MethodPost, "/api/v1/simulate", periodicBody(64, 16, 4)); w.Code != http.StatusOK {
		t.Fatalf("expected a modest workload to run, got %d", w.Code)
	}
}
