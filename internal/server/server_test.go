package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/agentdesk/deepresearch/config"
	agentcore "github.com/agentdesk/deepresearch/internal/agent/core"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	agenttele "github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

func newTestServer() (*Server, http.Handler, *agenttele.Telemetry) {
	cfg := &appconfig.Config{}
	cfg.General.DefaultTimeout = time.Minute
	cfg.Planner = appconfig.PlannerConfig{MinSearches: 1, MaxSearches: 6}
	cfg.Email = appconfig.EmailConfig{Recipient: "research@example.com", BodyLimit: 1000}
	cfg.Telemetry = appconfig.TelemetryConfig{Enabled: true}

	tele := agenttele.NewTelemetry(cfg.Telemetry)
	registry := runtime.NewRegistry()
	manager := agentcore.NewManager(cfg, provider.Disabled{}, tele, registry)
	s, e := New(manager, tele)
	return s, e, tele
}

func TestHealthz(t *testing.T) {
	_, h, _ := newTestServer()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestResearchEndpoint(t *testing.T) {
	_, h, tele := newTestServer()

	body := strings.NewReader(`{"query": "container security and supply chains"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/research", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report agentcore.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.MarkdownReport == "" {
		t.Fatalf("expected a markdown report")
	}

	if got := tele.Events(""); len(got) == 0 {
		t.Fatalf("expected the run to leave a trace")
	}
}

func TestResearchRejectsEmptyQuery(t *testing.T) {
	_, h, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{"query": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp["error"] != "query is required" {
		t.Fatalf("unexpected error message: %v", resp["error"])
	}
}

func TestResearchRejectsMalformedBody(t *testing.T) {
	_, h, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAgentsEndpoint(t *testing.T) {
	_, h, _ := newTestServer()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var agents []runtime.Agent
	if err := json.Unmarshal(rec.Body.Bytes(), &agents); err != nil {
		t.Fatalf("decode agents: %v", err)
	}
	names := map[string]bool{}
	for _, a := range agents {
		names[a.Name] = true
	}
	for _, want := range []string{
		agentcore.ManagerAgentName,
		agentcore.PlannerAgentName,
		agentcore.SearchAgentName,
		agentcore.WriterAgentName,
		agentcore.EmailAgentName,
	} {
		if !names[want] {
			t.Fatalf("agent %s missing from listing: %v", want, names)
		}
	}
}

func TestTraceEndpoint(t *testing.T) {
	_, h, tele := newTestServer()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/ghost/trace", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", rec.Code)
	}

	tele.RecordStageEvent("run-1", "planning", "start")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1/trace", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var events []agenttele.StageEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if len(events) != 1 || events[0].Stage != "planning" {
		t.Fatalf("unexpected trace: %+v", events)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h, tele := newTestServer()
	tele.RecordRunOutcome("run-1", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deepresearch_runs_total") {
		t.Fatalf("runs counter not exported")
	}
}
