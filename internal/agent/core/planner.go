package core

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agentdesk/deepresearch/config"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	"github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

var questionWords = map[string]struct{}{
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "whom": {}, "does": {}, "is": {}, "are": {}, "can": {},
	"could": {}, "should": {}, "would": {},
}

var (
	delimiterRe   = regexp.MustCompile(`[?,;:-]`)
	conjunctionRe = regexp.MustCompile(`(?i)\band\b`)
	connectorRe   = regexp.MustCompile(`(?i),| about | for | on | regarding | and `)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Planner turns a free-text query into a ranked, deduplicated search
// plan, via the LLM when available and a deterministic keyword
// expansion otherwise.
type Planner struct {
	cfg       config.PlannerConfig
	model     string
	provider  provider.Provider
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewPlanner creates a new planner instance
func NewPlanner(cfg *config.Config, prov provider.Provider, tele *telemetry.Telemetry) *Planner {
	return &Planner{
		cfg:       cfg.Planner,
		model:     cfg.LLM.Routing.Model("planning"),
		provider:  prov,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[PLANNER] ", log.LstdFlags),
	}
}

// Plan produces a SearchPlan for the query. It never fails: any LLM or
// parsing problem silently downgrades to the heuristic path, and both
// paths converge on the same normalization.
func (p *Planner) Plan(ctx context.Context, query string) SearchPlan {
	n := p.determineSearchCount(query)

	items, ok := p.llmPlan(ctx, query)
	if !ok {
		p.telemetry.RecordFallback(RunIDFrom(ctx), StagePlanning)
		items = p.heuristicPlan(query)
	}

	searches := p.validateAndRefine(items, n)
	if len(searches) == 0 {
		// An LLM plan can normalize away entirely; the heuristic
		// expansion always survives refinement.
		searches = p.validateAndRefine(p.heuristicPlan(query), n)
	}
	return SearchPlan{Searches: searches}
}

// Run dispatches a registry payload to Plan. The planner accepts only a
// raw query string.
func (p *Planner) Run(ctx context.Context, payload any) (any, error) {
	query, ok := payload.(string)
	if !ok {
		return nil, &runtime.UnsupportedPayloadError{Agent: PlannerAgentName, Payload: payload}
	}
	return p.Plan(ctx, query), nil
}

// determineSearchCount estimates how many searches the query deserves
// from four signals: length, delimiters, question words and
// conjunctions. The result is clamped to the configured bounds.
func (p *Planner) determineSearchCount(query string) int {
	minSearches, maxSearches := p.cfg.MinSearches, p.cfg.MaxSearches
	if minSearches < 1 {
		minSearches = 1
	}
	if maxSearches < minSearches {
		maxSearches = 6
	}

	q := strings.TrimSpace(query)
	if q == "" {
		return minSearches
	}

	base := 1
	if len(strings.Fields(q)) >= 8 {
		base++
	}
	if delimiterRe.MatchString(q) {
		base++
	}
	lower := strings.ToLower(q)
	for _, w := range strings.Fields(lower) {
		if _, ok := questionWords[strings.Trim(w, " .;,:?")]; ok {
			base++
			break
		}
	}
	if strings.Contains(q, ",") || strings.Contains(q, "/") || conjunctionRe.MatchString(q) {
		base++
	}

	if base < minSearches {
		return minSearches
	}
	if base > maxSearches {
		return maxSearches
	}
	return base
}

// llmPlan asks the model for a search plan and decodes whatever JSON
// can be recovered from its reply. ok is false whenever the call or the
// extraction leaves us without a mapping to work from.
func (p *Planner) llmPlan(ctx context.Context, query string) ([]SearchItem, bool) {
	system := `You are a Planner agent. Given a user query, produce a JSON object matching: {"searches": [{"query": str, "reason": str, "priority": float, "rank": int, "tags": [str]}]}.`
	user := fmt.Sprintf("User query: %s\n\nReturn exactly one JSON object with a 'searches' array of 1..6 items.", query)

	text, err := p.provider.Complete(ctx, system, user, p.model, 0.2, 800)
	if err != nil {
		p.logger.Printf("llm plan unavailable, using heuristic: %v", err)
		return nil, false
	}

	parsed, ok := ExtractJSON(text).(map[string]any)
	if !ok {
		p.logger.Printf("llm plan did not extract to a mapping, using heuristic")
		return nil, false
	}
	raw, ok := parsed["searches"].([]any)
	if !ok {
		return nil, false
	}

	items := make([]SearchItem, 0, len(raw))
	for i, entry := range raw {
		switch v := entry.(type) {
		case map[string]any:
			item := SearchItem{
				Query:    str(v["query"]),
				Reason:   str(v["reason"]),
				Priority: toFloat(v["priority"], 0.5),
				Rank:     toInt(v["rank"], i+1),
			}
			if tags, ok := v["tags"].([]any); ok {
				for _, tag := range tags {
					if s, ok := tag.(string); ok {
						item.Tags = append(item.Tags, s)
					}
				}
			}
			items = append(items, item)
		case string:
			items = append(items, SearchItem{Query: v, Priority: 0.5, Rank: i + 1})
		default:
			items = append(items, SearchItem{Query: fmt.Sprint(v), Priority: 0.5, Rank: i + 1})
		}
	}
	return items, true
}

// heuristicPlan expands the query into candidate searches without any
// model: connector-split topics each yield an overview, a tutorial and
// a recent-developments variant, with single keywords as the last
// resort.
func (p *Planner) heuristicPlan(query string) []SearchItem {
	var candidates []SearchItem
	for _, part := range connectorRe.Split(query, -1) {
		topic := strings.TrimSpace(part)
		if topic == "" {
			continue
		}
		candidates = append(candidates,
			SearchItem{Query: topic + " overview", Reason: "General overview", Priority: 0.5},
			SearchItem{Query: topic + " tutorial", Reason: "How-to / hands-on", Priority: 0.5},
			SearchItem{Query: topic + " recent developments", Reason: "Latest updates", Priority: 0.5},
		)
	}
	if len(candidates) == 0 {
		words := strings.Fields(query)
		if len(words) > 6 {
			words = words[:6]
		}
		for _, w := range words {
			candidates = append(candidates, SearchItem{Query: w, Reason: "Keyword", Priority: 0.5})
		}
	}
	return candidates
}

// validateAndRefine applies the shared normalization to either path's
// output: whitespace collapse, punctuation trim, minimum length,
// case-insensitive dedupe, stable priority sort, truncation and rank
// assignment.
func (p *Planner) validateAndRefine(items []SearchItem, limit int) []SearchItem {
	seen := make(map[string]struct{}, len(items))
	refined := make([]SearchItem, 0, len(items))
	for _, it := range items {
		q := whitespaceRe.ReplaceAllString(strings.TrimSpace(it.Query), " ")
		q = strings.Trim(q, " .;,:")
		if utf8.RuneCountInString(q) < 3 {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		it.Query = q
		it.Priority = math.Round(it.Priority*1000) / 1000
		refined = append(refined, it)
	}

	sort.SliceStable(refined, func(i, j int) bool { return refined[i].Priority > refined[j].Priority })
	if limit > 0 && len(refined) > limit {
		refined = refined[:limit]
	}
	for i := range refined {
		refined[i].Rank = i + 1
	}
	return refined
}
