package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

const fallbackReportTitle = "Research Report"

// Writer composes a titled markdown report from search results, via the
// LLM when available and deterministic markdown assembly otherwise.
type Writer struct {
	model     string
	provider  provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewWriter creates a new writer instance
func NewWriter(cfg *config.Config, prov provider.Provider, tele *telemetry.Telemetry) *Writer {
	return &Writer{
		model:     cfg.LLM.Routing.Model("synthesis"),
		provider:  prov,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[WRITER] ", log.LstdFlags),
	}
}

// Write produces a Report for the given results. It never fails: a
// missing or malformed LLM reply degrades to the deterministic report.
// The returned metadata is never nil and always records the result
// count in the fallback path.
func (w *Writer) Write(ctx context.Context, results []SearchResult) Report {
	report, ok := w.llmWrite(ctx, results)
	if !ok {
		w.telemetry.RecordFallback(RunIDFrom(ctx), StageWriting)
		report = w.simulatedWrite(results)
	}
	if report.Metadata == nil {
		report.Metadata = map[string]any{}
	}
	return report
}

// Run dispatches a registry payload to Write. Accepted shapes are the
// WriterPayload envelope or a bare result list.
func (w *Writer) Run(ctx context.Context, payload any) (any, error) {
	switch v := payload.(type) {
	case WriterPayload:
		return w.Write(ctx, v.SearchResults), nil
	case []SearchResult:
		return w.Write(ctx, v), nil
	default:
		return nil, &runtime.UnsupportedPayloadError{Agent: WriterAgentName, Payload: payload}
	}
}

func (w *Writer) llmWrite(ctx context.Context, results []SearchResult) (Report, bool) {
	system := "You are a Writer agent: produce JSON {title, markdown_report, metadata} from search results."
	user := fmt.Sprintf("Search results: %s\nReturn one JSON object.", mustJSON(results))

	text, err := w.provider.Complete(ctx, system, user, w.model, 0.3, 1500)
	if err != nil {
		w.logger.Printf("llm writer unavailable, assembling markdown: %v", err)
		return Report{}, false
	}

	parsed, ok := ExtractJSON(text).(map[string]any)
	if !ok {
		w.logger.Printf("llm writer did not extract to a mapping, assembling markdown")
		return Report{}, false
	}

	report := Report{
		Title:          str(parsed["title"]),
		MarkdownReport: str(parsed["markdown_report"]),
	}
	if report.Title == "" {
		report.Title = fallbackReportTitle
	}
	if report.MarkdownReport == "" {
		report.MarkdownReport = mustJSON(parsed)
	}
	if meta, ok := parsed["metadata"].(map[string]any); ok {
		report.Metadata = meta
	} else {
		report.Metadata = map[string]any{}
	}
	return report, true
}

// simulatedWrite assembles one "## Result <i>: <query>" section per
// result, with the snippet and a markdown source link.
func (w *Writer) simulatedWrite(results []SearchResult) Report {
	var b strings.Builder
	b.WriteString("# " + fallbackReportTitle + "\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "## Result %d: %s\n%s\n[source](%s)\n\n", i+1, r.Query, r.Snippet, r.URL)
	}
	return Report{
		Title:          fallbackReportTitle,
		MarkdownReport: b.String(),
		Metadata:       map[string]any{"count": len(results)},
	}
}
