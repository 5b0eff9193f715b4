package core

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

// Searcher turns planned search items into result snippets, via the LLM
// when available and a deterministic snippet generator otherwise.
type Searcher struct {
	model     string
	provider  provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewSearcher creates a new searcher instance
func NewSearcher(cfg *config.Config, prov provider.Provider, tele *telemetry.Telemetry) *Searcher {
	return &Searcher{
		model:     cfg.LLM.Routing.Model("search"),
		provider:  prov,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[SEARCH] ", log.LstdFlags),
	}
}

// Search produces one snippet per planned item. Empty input yields an
// empty result list; the simulated fallback never drops or duplicates
// an item and preserves input order.
func (s *Searcher) Search(ctx context.Context, items []SearchItem) []SearchResult {
	if len(items) == 0 {
		return []SearchResult{}
	}

	results, ok := s.llmSearch(ctx, items)
	if !ok {
		s.telemetry.RecordFallback(RunIDFrom(ctx), StageSearching)
		results = s.simulatedSearch(items)
	}
	return results
}

// Run dispatches a registry payload to Search. Accepted shapes are a
// SearchPlan or a bare item list.
func (s *Searcher) Run(ctx context.Context, payload any) (any, error) {
	switch v := payload.(type) {
	case SearchPlan:
		return s.Search(ctx, v.Searches), nil
	case []SearchItem:
		return s.Search(ctx, v), nil
	default:
		return nil, &runtime.UnsupportedPayloadError{Agent: SearchAgentName, Payload: payload}
	}
}

func (s *Searcher) llmSearch(ctx context.Context, items []SearchItem) ([]SearchResult, bool) {
	serial := make([]map[string]any, len(items))
	for i, it := range items {
		serial[i] = map[string]any{"query": it.Query, "reason": it.Reason}
	}

	system := "You are a Search agent: simulate web search results. Return JSON list of objects: {query, snippet, url}."
	user := fmt.Sprintf("Run searches for: %s\nReturn JSON array.", mustJSON(serial))

	text, err := s.provider.Complete(ctx, system, user, s.model, 0.2, 800)
	if err != nil {
		s.logger.Printf("llm search unavailable, simulating: %v", err)
		return nil, false
	}

	parsed, ok := ExtractJSON(text).([]any)
	if !ok {
		s.logger.Printf("llm search did not extract to a list, simulating")
		return nil, false
	}

	results := make([]SearchResult, 0, len(parsed))
	for _, entry := range parsed {
		m, ok := entry.(map[string]any)
		if !ok {
			q := fmt.Sprint(entry)
			results = append(results, simulatedResult(q))
			continue
		}
		q := str(m["query"])
		res := SearchResult{Query: q, Snippet: str(m["snippet"]), URL: str(m["url"])}
		if res.Snippet == "" {
			res.Snippet = fmt.Sprintf("Snippet for %s", q)
		}
		if res.URL == "" {
			res.URL = searchURL(q)
		}
		results = append(results, res)
	}
	return results, true
}

// simulatedSearch synthesizes a snippet and URL per item, in order.
func (s *Searcher) simulatedSearch(items []SearchItem) []SearchResult {
	results := make([]SearchResult, len(items))
	for i, it := range items {
		results[i] = simulatedResult(it.Query)
	}
	return results
}

func simulatedResult(query string) SearchResult {
	return SearchResult{
		Query:   query,
		Snippet: fmt.Sprintf("Simulated snippet for '%s'", query),
		URL:     searchURL(query),
	}
}

func searchURL(query string) string {
	return "https://example.com/search?q=" + url.QueryEscape(query)
}
