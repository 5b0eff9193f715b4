package core

import "fmt"

// Agent names as they appear in the handler registry.
const (
	PlannerAgentName = "PlannerAgent"
	SearchAgentName  = "SearchAgent"
	WriterAgentName  = "WriterAgent"
	EmailAgentName   = "EmailAgent"
	ManagerAgentName = "ManagerAgent"
)

// Pipeline stage names used in trace events and metrics labels.
const (
	StagePlanning  = "planning"
	StageSearching = "searching"
	StageWriting   = "writing"
	StageEmailing  = "emailing"
	StageDone      = "done"
)

// SearchItem is one planned query.
type SearchItem struct {
	Query    string   `json:"query"`
	Reason   string   `json:"reason,omitempty"`
	Priority float64  `json:"priority"`
	Rank     int      `json:"rank,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// SearchPlan is an ordered, deduplicated set of SearchItems, sorted by
// descending priority and truncated to the planner's bounds.
type SearchPlan struct {
	Searches []SearchItem `json:"searches"`
}

// SearchResult is one retrieved snippet.
type SearchResult struct {
	Query   string `json:"query"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// WriterPayload is the writing stage's input envelope.
type WriterPayload struct {
	SearchResults []SearchResult `json:"search_results"`
}

// Report is the pipeline's final deliverable. Metadata is always
// present, possibly empty, never nil.
type Report struct {
	Title          string         `json:"title"`
	MarkdownReport string         `json:"markdown_report"`
	Metadata       map[string]any `json:"metadata"`
}

// PipelineError reports a stage that produced a structurally invalid
// result with no viable fallback. Only the planning and writing stages
// can raise it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("pipeline stage %s failed", e.Stage)
}

func (e *PipelineError) Unwrap() error { return e.Err }
