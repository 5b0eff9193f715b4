package core

import (
	"context"
	"time"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
)

// stubLLM returns a canned completion, or an error when text is empty.
type stubLLM struct {
	text string
	err  error
}

func (s stubLLM) Complete(ctx context.Context, system, user, model string, temperature float64, maxTokens int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		General: config.GeneralConfig{DefaultTimeout: time.Minute},
		Planner: config.PlannerConfig{MinSearches: 1, MaxSearches: 6},
		Email:   config.EmailConfig{Recipient: "research@example.com", BodyLimit: 1000},
		Telemetry: config.TelemetryConfig{
			Enabled: true,
		},
	}
}

func testTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{Enabled: true})
}
