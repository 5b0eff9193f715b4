package core

import (
	"context"
	"testing"

	"github.com/agentdesk/deepresearch/provider"
)

func TestSendSimulatedFallback(t *testing.T) {
	e := NewEmailer(testConfig(), provider.Disabled{}, testTelemetry())

	status := e.Send(context.Background(), Report{
		Title:          "Research Report",
		MarkdownReport: "# Research Report\n\nbody",
		Metadata:       map[string]any{},
	})
	if status != StatusSent {
		t.Fatalf("expected %q, got %q", StatusSent, status)
	}
}

func TestSendUsesLLMStatus(t *testing.T) {
	llm := stubLLM{text: `{"subject": "Your report", "body": "see attached", "status": "queued"}`}
	e := NewEmailer(testConfig(), llm, testTelemetry())

	status := e.Send(context.Background(), Report{MarkdownReport: "# r"})
	if status != "queued" {
		t.Fatalf("expected llm status, got %q", status)
	}
}

func TestSendFallsBackWithoutStatus(t *testing.T) {
	llm := stubLLM{text: `{"subject": "Your report", "body": "see attached"}`}
	e := NewEmailer(testConfig(), llm, testTelemetry())

	if status := e.Send(context.Background(), Report{MarkdownReport: "# r"}); status != StatusSent {
		t.Fatalf("expected fallback status, got %q", status)
	}
}

func TestEmailerRunPayloadShapes(t *testing.T) {
	e := NewEmailer(testConfig(), provider.Disabled{}, testTelemetry())

	if out, err := e.Run(context.Background(), Report{MarkdownReport: "# r"}); err != nil || out != StatusSent {
		t.Fatalf("report payload: %v %v", out, err)
	}
	if out, err := e.Run(context.Background(), "# raw markdown"); err != nil || out != StatusSent {
		t.Fatalf("string payload: %v %v", out, err)
	}
	if _, err := e.Run(context.Background(), 3.14); err == nil {
		t.Fatalf("expected unsupported payload error")
	}
}
