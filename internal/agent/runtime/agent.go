package runtime

// Agent is an immutable descriptor for a named role. It carries no
// behavior; the behavior lives in the Handler registered under the same
// name.
type Agent struct {
	Name         string   `json:"name"`
	Instructions string   `json:"instructions,omitempty"`
	Model        string   `json:"model,omitempty"`
	OutputType   string   `json:"output_type,omitempty"`
	Tools        []*Agent `json:"-"`
	Handoffs     Handoffs `json:"handoffs,omitempty"`
}

// Handoff names a delegation target and the payload shape it expects.
type Handoff struct {
	ToolName string `json:"tool_name"`
	Expects  string `json:"expects"`
}

// Handoffs maps a transition label to its target.
type Handoffs map[string]Handoff
