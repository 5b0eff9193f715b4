package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentdesk/deepresearch/config"
)

// StageEvent is one entry in the append-only trace log.
type StageEvent struct {
	RunID string    `json:"run_id"`
	Stage string    `json:"stage"`
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// Telemetry records pipeline traces and exports prometheus metrics. It
// is shared by concurrent runs; all state is mutex-guarded.
type Telemetry struct {
	config   config.TelemetryConfig
	logger   *log.Logger
	registry *prometheus.Registry

	mu     sync.RWMutex
	events []StageEvent

	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	llmFallbacks  *prometheus.CounterVec
}

// NewTelemetry creates a telemetry instance with its own prometheus
// registry, so independent instances (one per test, one per process)
// never collide on metric registration.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	t := &Telemetry{
		config:   cfg,
		logger:   log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		registry: registry,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_runs_total",
			Help: "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deepresearch_stage_duration_seconds",
			Help:    "Wall time per pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		llmFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_llm_fallbacks_total",
			Help: "Stage executions that degraded to the deterministic fallback.",
		}, []string{"stage"}),
	}

	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startTraceReporting()
	}

	return t
}

// Registry exposes the metrics registry for the HTTP /metrics handler.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// RecordStageEvent appends one (run, stage, event) tuple to the trace.
func (t *Telemetry) RecordStageEvent(runID, stage, event string) {
	if !t.config.Enabled {
		return
	}
	t.mu.Lock()
	t.events = append(t.events, StageEvent{RunID: runID, Stage: stage, Event: event, At: time.Now()})
	t.mu.Unlock()

	t.logger.Printf("run=%s stage=%s event=%s", runID, stage, event)
}

// RecordStageDuration observes the wall time of one stage.
func (t *Telemetry) RecordStageDuration(stage string, d time.Duration) {
	if !t.config.Enabled {
		return
	}
	t.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFallback counts a stage that degraded to its deterministic path.
func (t *Telemetry) RecordFallback(runID, stage string) {
	if !t.config.Enabled {
		return
	}
	t.llmFallbacks.WithLabelValues(stage).Inc()
	t.RecordStageEvent(runID, stage, "fallback")
}

// RecordRunOutcome counts a finished run.
func (t *Telemetry) RecordRunOutcome(runID string, err error) {
	if !t.config.Enabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	t.runsTotal.WithLabelValues(outcome).Inc()
	t.RecordStageEvent(runID, "manager", outcome)
}

// Events returns the trace entries for one run, in append order. An
// empty runID returns the whole trace.
func (t *Telemetry) Events(runID string) []StageEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]StageEvent, 0, len(t.events))
	for _, ev := range t.events {
		if runID == "" || ev.RunID == runID {
			out = append(out, ev)
		}
	}
	return out
}

// startTraceReporting periodically logs the trace length.
func (t *Telemetry) startTraceReporting() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.RLock()
		n := len(t.events)
		t.mu.RUnlock()
		t.logger.Printf("trace entries: %d", n)
	}
}
