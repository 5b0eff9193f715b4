package core

import (
	"context"
	"strings"
	"testing"

	"github.com/agentdesk/deepresearch/provider"
)

func TestSearchEmptyInput(t *testing.T) {
	s := NewSearcher(testConfig(), provider.Disabled{}, testTelemetry())

	results := s.Search(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil result list, got %v", results)
	}
}

func TestSearchSimulatedFallback(t *testing.T) {
	s := NewSearcher(testConfig(), provider.Disabled{}, testTelemetry())

	items := []SearchItem{
		{Query: "performance testing overview"},
		{Query: "load balancing tutorial"},
	}
	results := s.Search(context.Background(), items)
	if len(results) != len(items) {
		t.Fatalf("fallback must be 1:1, got %d results for %d items", len(results), len(items))
	}
	for i, r := range results {
		if r.Query != items[i].Query {
			t.Fatalf("order not preserved at %d: %q", i, r.Query)
		}
		if r.Snippet != "Simulated snippet for '"+items[i].Query+"'" {
			t.Fatalf("unexpected snippet %q", r.Snippet)
		}
		if !strings.HasPrefix(r.URL, "https://example.com/search?q=") {
			t.Fatalf("unexpected url %q", r.URL)
		}
		if strings.Contains(r.URL, " ") {
			t.Fatalf("url not encoded: %q", r.URL)
		}
	}
}

func TestSearchUsesLLMList(t *testing.T) {
	llm := stubLLM{text: `Here are the results:
[{"query": "go profiling", "snippet": "pprof docs", "url": "https://go.dev/blog/pprof"}]`}
	s := NewSearcher(testConfig(), llm, testTelemetry())

	results := s.Search(context.Background(), []SearchItem{{Query: "go profiling"}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Snippet != "pprof docs" || results[0].URL != "https://go.dev/blog/pprof" {
		t.Fatalf("llm result not used: %+v", results[0])
	}
}

func TestSearchFallsBackOnNonListOutput(t *testing.T) {
	s := NewSearcher(testConfig(), stubLLM{text: `{"oops": true}`}, testTelemetry())

	results := s.Search(context.Background(), []SearchItem{{Query: "edge case"}})
	if len(results) != 1 {
		t.Fatalf("expected simulated result, got %v", results)
	}
	if !strings.HasPrefix(results[0].Snippet, "Simulated snippet for") {
		t.Fatalf("expected simulated snippet, got %q", results[0].Snippet)
	}
}

func TestSearcherRunPayloadShapes(t *testing.T) {
	s := NewSearcher(testConfig(), provider.Disabled{}, testTelemetry())

	if _, err := s.Run(context.Background(), SearchPlan{Searches: []SearchItem{{Query: "a b c"}}}); err != nil {
		t.Fatalf("SearchPlan payload: %v", err)
	}
	if _, err := s.Run(context.Background(), []SearchItem{{Query: "a b c"}}); err != nil {
		t.Fatalf("item list payload: %v", err)
	}
	if _, err := s.Run(context.Background(), 42); err == nil {
		t.Fatalf("expected unsupported payload error")
	}
}
