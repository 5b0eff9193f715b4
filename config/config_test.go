package config

import "testing"

func TestPlannerConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     PlannerConfig
		wantErr bool
	}{
		{"defaults", PlannerConfig{MinSearches: 1, MaxSearches: 6}, false},
		{"single", PlannerConfig{MinSearches: 1, MaxSearches: 1}, false},
		{"zero min", PlannerConfig{MinSearches: 0, MaxSearches: 6}, true},
		{"inverted", PlannerConfig{MinSearches: 4, MaxSearches: 2}, true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestRoutingModelFallback(t *testing.T) {
	routing := LLMRoutingConfig{
		Planning: "gpt-4o",
		Fallback: "gpt-4o-mini",
	}

	if got := routing.Model("planning"); got != "gpt-4o" {
		t.Fatalf("planning route: got %q", got)
	}
	if got := routing.Model("search"); got != "gpt-4o-mini" {
		t.Fatalf("empty route must use fallback: got %q", got)
	}
	if got := routing.Model("unknown"); got != "gpt-4o-mini" {
		t.Fatalf("unknown stage must use fallback: got %q", got)
	}
}
