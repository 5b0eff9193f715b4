package core

import (
	"log"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

// NewManager builds the four stage agents plus the manager, registers
// every handler on the registry and returns the manager. Registration
// happens once at startup, before any run; re-registering a name
// overwrites the previous handler.
func NewManager(cfg *config.Config, prov provider.Provider, tele *telemetry.Telemetry, reg *runtime.Registry) *Manager {
	plannerAgent := &runtime.Agent{
		Name:         PlannerAgentName,
		Instructions: "Produce a JSON search plan containing searches: [{query, reason, priority, rank, tags}].",
		Model:        cfg.LLM.Routing.Model("planning"),
		OutputType:   "SearchPlan",
	}
	searchAgent := &runtime.Agent{
		Name:         SearchAgentName,
		Instructions: "Execute searches and return JSON list of {query, snippet, url}.",
		Model:        cfg.LLM.Routing.Model("search"),
		OutputType:   "[]SearchResult",
	}
	writerAgent := &runtime.Agent{
		Name:         WriterAgentName,
		Instructions: "Compose a markdown report from search results. Output JSON {title, markdown_report, metadata}.",
		Model:        cfg.LLM.Routing.Model("synthesis"),
		OutputType:   "Report",
	}
	emailAgent := &runtime.Agent{
		Name:         EmailAgentName,
		Instructions: "Compose an email body from a markdown report and return a status string.",
		Model:        cfg.LLM.Routing.Model("email"),
		OutputType:   "string",
	}

	reg.Register(PlannerAgentName, NewPlanner(cfg, prov, tele))
	reg.Register(SearchAgentName, NewSearcher(cfg, prov, tele))
	reg.Register(WriterAgentName, NewWriter(cfg, prov, tele))
	reg.Register(EmailAgentName, NewEmailer(cfg, prov, tele))

	managerAgent := &runtime.Agent{
		Name:         ManagerAgentName,
		Instructions: "Coordinate PlannerAgent, SearchAgent, WriterAgent and EmailAgent to produce a report for the input query.",
		Tools:        []*runtime.Agent{plannerAgent, searchAgent, writerAgent, emailAgent},
		Handoffs: runtime.Handoffs{
			"to_planner": {ToolName: PlannerAgentName, Expects: "string"},
			"to_search":  {ToolName: SearchAgentName, Expects: "[]SearchItem"},
			"to_writer":  {ToolName: WriterAgentName, Expects: "WriterPayload"},
			"to_email":   {ToolName: EmailAgentName, Expects: "Report"},
			"done":       {ToolName: "", Expects: "Report"},
		},
		OutputType: "Report",
	}

	m := &Manager{
		runner:    runtime.NewRunner(reg),
		telemetry: tele,
		logger:    log.New(log.Writer(), "[MANAGER] ", log.LstdFlags),
		timeout:   cfg.General.DefaultTimeout,
		self:      managerAgent,
		planner:   plannerAgent,
		search:    searchAgent,
		writer:    writerAgent,
		email:     emailAgent,
	}
	reg.Register(ManagerAgentName, runtime.HandlerFunc(m.handle))

	return m
}
