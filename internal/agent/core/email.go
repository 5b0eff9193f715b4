package core

import (
	"context"
	"fmt"
	"log"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

// StatusSent is the deterministic delivery status.
const StatusSent = "email_sent"

// Emailer simulates delivery of a report. The LLM may compose the
// subject and body; the send itself is always simulated through the
// log.
type Emailer struct {
	cfg       config.EmailConfig
	model     string
	provider  provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewEmailer creates a new emailer instance
func NewEmailer(cfg *config.Config, prov provider.Provider, tele *telemetry.Telemetry) *Emailer {
	return &Emailer{
		cfg:       cfg.Email,
		model:     cfg.LLM.Routing.Model("email"),
		provider:  prov,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[EMAIL] ", log.LstdFlags),
	}
}

// Send records the report as a simulated email and returns a delivery
// status. It never fails: every composition problem demotes to the
// deterministic simulated send.
func (e *Emailer) Send(ctx context.Context, report Report) string {
	if status, ok := e.llmSend(ctx, report); ok {
		return status
	}
	e.telemetry.RecordFallback(RunIDFrom(ctx), StageEmailing)
	return e.simulatedSend(report)
}

// Run dispatches a registry payload to Send. Accepted shapes are a
// Report or a bare markdown string.
func (e *Emailer) Run(ctx context.Context, payload any) (any, error) {
	switch v := payload.(type) {
	case Report:
		return e.Send(ctx, v), nil
	case string:
		return e.Send(ctx, Report{Title: fallbackReportTitle, MarkdownReport: v, Metadata: map[string]any{}}), nil
	default:
		return nil, &runtime.UnsupportedPayloadError{Agent: EmailAgentName, Payload: payload}
	}
}

func (e *Emailer) llmSend(ctx context.Context, report Report) (string, bool) {
	system := "You are an Email agent. Given a markdown report, produce JSON {subject, body, status}."
	user := fmt.Sprintf("Report markdown (truncated): %s\nReturn JSON with subject and body and status.", truncate(report.MarkdownReport, 2000))

	text, err := e.provider.Complete(ctx, system, user, e.model, 0.2, 800)
	if err != nil {
		e.logger.Printf("llm email unavailable, simulating: %v", err)
		return "", false
	}

	parsed, ok := ExtractJSON(text).(map[string]any)
	if !ok {
		return "", false
	}
	status := str(parsed["status"])
	if status == "" {
		return "", false
	}

	e.logger.Printf("=== Email Send (LLM content) ===")
	e.logger.Printf("To: %s", e.cfg.Recipient)
	e.logger.Printf("Subject: %s", str(parsed["subject"]))
	e.logger.Printf("%s", truncate(str(parsed["body"]), e.cfg.BodyLimit))
	return status, true
}

// simulatedSend records a truncated report body as a sent email.
func (e *Emailer) simulatedSend(report Report) string {
	e.logger.Printf("=== Simulated Email ===")
	e.logger.Printf("To: %s", e.cfg.Recipient)
	e.logger.Printf("Subject: Your research report")
	e.logger.Printf("%s", truncate(report.MarkdownReport, e.cfg.BodyLimit))
	e.logger.Printf("=== End email ===")
	return StatusSent
}
