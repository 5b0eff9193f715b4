package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
)

// Manager orchestrates the fixed Planner -> Search -> Writer -> Email
// pipeline through the Runner. Stages run strictly in sequence;
// concurrent pipeline runs share only the read-mostly registry and the
// telemetry sink.
type Manager struct {
	runner    *runtime.Runner
	telemetry *telemetry.Telemetry
	logger    *log.Logger
	timeout   time.Duration

	self    *runtime.Agent
	planner *runtime.Agent
	search  *runtime.Agent
	writer  *runtime.Agent
	email   *runtime.Agent
}

// Agents returns the descriptors of the manager and its four tools.
func (m *Manager) Agents() []*runtime.Agent {
	return []*runtime.Agent{m.self, m.planner, m.search, m.writer, m.email}
}

// Run executes one pipeline run for the query and returns the report
// from the writing stage. The planning and writing stages are the only
// ones whose malformed output is fatal; searching always has a
// deterministic fallback and emailing is best-effort by contract.
func (m *Manager) Run(ctx context.Context, query string) (Report, error) {
	runID := uuid.New().String()
	ctx = WithRunID(ctx, runID)
	m.logger.Printf("starting run %s for query: %q", runID, query)

	report, err := m.run(ctx, runID, query)
	m.telemetry.RecordRunOutcome(runID, err)
	if err != nil {
		m.logger.Printf("run %s failed: %v", runID, err)
		return Report{}, err
	}
	m.logger.Printf("run %s done: %q (%d chars)", runID, report.Title, len(report.MarkdownReport))
	return report, nil
}

func (m *Manager) run(ctx context.Context, runID, query string) (Report, error) {
	// Planning
	res, err := m.stage(ctx, runID, StagePlanning, m.planner, query)
	if err != nil {
		return Report{}, &PipelineError{Stage: "planner", Err: err}
	}
	plan, err := m.coercePlan(res)
	if err != nil {
		m.telemetry.RecordStageEvent(runID, StagePlanning, "invalid")
		return Report{}, &PipelineError{Stage: "planner", Err: err}
	}

	// Searching
	res, err = m.stage(ctx, runID, StageSearching, m.search, plan.Searches)
	if err != nil {
		return Report{}, err
	}
	results, err := runtime.As[[]SearchResult](res)
	if err != nil {
		m.telemetry.RecordStageEvent(runID, StageSearching, "invalid")
		return Report{}, err
	}

	// Writing
	res, err = m.stage(ctx, runID, StageWriting, m.writer, WriterPayload{SearchResults: results})
	if err != nil {
		return Report{}, &PipelineError{Stage: "writer", Err: err}
	}
	report, err := m.coerceReport(res)
	if err != nil {
		m.telemetry.RecordStageEvent(runID, StageWriting, "invalid")
		return Report{}, &PipelineError{Stage: "writer", Err: err}
	}

	// Emailing: best-effort, the status is discarded and a failure
	// never aborts the run.
	if _, err := m.stage(ctx, runID, StageEmailing, m.email, report); err != nil {
		m.logger.Printf("run %s: email stage failed, report unaffected: %v", runID, err)
	}

	m.telemetry.RecordStageEvent(runID, StageDone, "complete")
	return report, nil
}

// stage runs one agent through the Runner with trace events around it.
func (m *Manager) stage(ctx context.Context, runID, name string, agent *runtime.Agent, payload any) (runtime.Result, error) {
	m.telemetry.RecordStageEvent(runID, name, "start")
	started := time.Now()

	res, err := m.runner.Run(ctx, agent, payload, m.timeout)

	m.telemetry.RecordStageDuration(name, time.Since(started))
	if err != nil {
		m.telemetry.RecordStageEvent(runID, name, "error")
		return runtime.Result{}, err
	}
	m.telemetry.RecordStageEvent(runID, name, "end")
	return res, nil
}

// coercePlan accepts a SearchPlan value or a mapping carrying a
// "searches" field. A plan with no items is structurally invalid: no
// later stage can proceed without search items.
func (m *Manager) coercePlan(res runtime.Result) (SearchPlan, error) {
	var plan SearchPlan
	switch out := res.Output.(type) {
	case SearchPlan:
		plan = out
	case map[string]any:
		if _, ok := out["searches"]; !ok {
			return SearchPlan{}, fmt.Errorf("planner output has no searches field")
		}
		var err error
		plan, err = runtime.As[SearchPlan](res)
		if err != nil {
			return SearchPlan{}, err
		}
	default:
		return SearchPlan{}, &runtime.CoercionError{Target: "core.SearchPlan", Source: fmt.Sprintf("%T", res.Output)}
	}
	if len(plan.Searches) == 0 {
		return SearchPlan{}, fmt.Errorf("planner produced an empty plan")
	}
	return plan, nil
}

// coerceReport accepts a Report value or a mapping carrying a
// "markdown_report" field, with exactly one construction attempt.
func (m *Manager) coerceReport(res runtime.Result) (Report, error) {
	var report Report
	switch out := res.Output.(type) {
	case Report:
		report = out
	case map[string]any:
		if _, ok := out["markdown_report"]; !ok {
			return Report{}, fmt.Errorf("writer output has no markdown_report field")
		}
		var err error
		report, err = runtime.As[Report](res)
		if err != nil {
			return Report{}, err
		}
	default:
		return Report{}, &runtime.CoercionError{Target: "core.Report", Source: fmt.Sprintf("%T", res.Output)}
	}
	if report.Metadata == nil {
		report.Metadata = map[string]any{}
	}
	return report, nil
}

// handle dispatches a registry payload to the manager itself, so the
// pipeline is callable through the same Runner contract as its stages.
// Accepted shapes are a query string or a mapping with a "query" field.
func (m *Manager) handle(ctx context.Context, payload any) (any, error) {
	switch v := payload.(type) {
	case string:
		return m.Run(ctx, v)
	case map[string]any:
		if q := str(v["query"]); q != "" {
			return m.Run(ctx, q)
		}
		return nil, &runtime.UnsupportedPayloadError{Agent: ManagerAgentName, Payload: payload}
	default:
		return nil, &runtime.UnsupportedPayloadError{Agent: ManagerAgentName, Payload: payload}
	}
}
