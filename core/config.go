package core

import "time"

// ModelProvider identifies the language model vendor backing a specialist.
// The set is closed; TeamFactory rejects values outside of it at build time.
type ModelProvider string

const (
	// ProviderOpenAI selects the OpenAI Chat Completions API.
	ProviderOpenAI ModelProvider = "openai"
	// ProviderClaude selects the Anthropic Messages API.
	ProviderClaude ModelProvider = "claude"
	// ProviderGemini selects Google Gemini via its OpenAI-compatible endpoint.
	ProviderGemini ModelProvider = "gemini"
	// ProviderGroq selects Groq via its OpenAI-compatible endpoint.
	ProviderGroq ModelProvider = "groq"
)

// ToolKind tags the variant of a ToolSpec. Unknown kinds are a build-time
// validation error, never a silent skip.
type ToolKind string

const (
	// ToolWebSearch binds a web search capability to a specialist.
	ToolWebSearch ToolKind = "WEB_SEARCH"
	// ToolFinance binds a market data capability to a specialist.
	ToolFinance ToolKind = "FINANCE"
)

// ToolSpec is the tagged variant describing one tool binding: a kind from the
// closed ToolKind set plus kind-specific options.
type ToolSpec struct {
	Kind    ToolKind       `json:"type"`
	Options map[string]any `json:"config,omitempty"`
}

// AgentSpec describes one specialist within an instance. Name must be unique
// within the instance; uniqueness is enforced by TeamFactory, not by storage.
type AgentSpec struct {
	Name     string        `json:"name"`
	Role     string        `json:"role"`
	Provider ModelProvider `json:"model_provider"`
	ModelID  string        `json:"model_id"`
	Tools    []ToolSpec    `json:"tools,omitempty"`
}

// DefaultRouterInstructions is applied when an upsert omits router
// instructions, mirroring the behaviour users expect from a fresh instance.
const DefaultRouterInstructions = "You are an intelligent router. Analyze the user's message and " +
	"delegate the task to the most suitable specialist on your team. " +
	"Respond only with the name of the specialist that should handle it."

// InstanceKey identifies one configured team: the (tenant, instance) pair.
// It is comparable and used as the cache key.
type InstanceKey struct {
	TenantID   string
	InstanceID string
}

// InstanceConfig is the persisted, user-editable configuration of one agent
// team. ConfigStore owns the truth; everything derived from it (the built
// orchestrator) is rebuildable and carries the Version it was built from.
type InstanceConfig struct {
	TenantID           string      `json:"tenant_id"`
	InstanceID         string      `json:"instance_id"`
	RouterInstructions string      `json:"router_instructions"`
	Agents             []AgentSpec `json:"agents"`

	// Version increases monotonically on every upsert and drives the
	// staleness check in the instance cache.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the cache key for this configuration.
func (c *InstanceConfig) Key() InstanceKey {
	return InstanceKey{TenantID: c.TenantID, InstanceID: c.InstanceID}
}
