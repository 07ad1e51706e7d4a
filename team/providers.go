package team

import (
	"fmt"
	"os"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/model"
	anthropicmodel "github.com/hupe1980/agentfleet/model/anthropic"
	geminimodel "github.com/hupe1980/agentfleet/model/gemini"
	groqmodel "github.com/hupe1980/agentfleet/model/groq"
	openaimodel "github.com/hupe1980/agentfleet/model/openai"

	"github.com/anthropics/anthropic-sdk-go"
)

// Credential environment variables per provider.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGroqAPIKey      = "GROQ_API_KEY"
)

// ModelBuilder constructs a model instance for a given model id.
type ModelBuilder func(modelID string) (model.Model, error)

// Provider bundles a model builder with its credential probe. The probe runs
// at build time so a misconfigured environment surfaces as a typed build
// error instead of a failing model call mid-conversation.
type Provider struct {
	Build             ModelBuilder
	CredentialPresent func() bool
}

// ProviderRegistry maps the closed set of model providers to constructors.
// Resolution of an unregistered provider is an explicit error which the
// factory classifies as UNKNOWN_MODEL_PROVIDER.
type ProviderRegistry struct {
	providers map[core.ModelProvider]Provider
}

// NewProviderRegistry constructs an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[core.ModelProvider]Provider)}
}

// NewDefaultProviderRegistry returns a registry with the four supported
// vendors wired to their SDK adapters and env-based credentials.
func NewDefaultProviderRegistry() *ProviderRegistry {
	r := NewProviderRegistry()

	r.Register(core.ProviderOpenAI, Provider{
		CredentialPresent: envPresent(EnvOpenAIAPIKey),
		Build: func(modelID string) (model.Model, error) {
			return openaimodel.NewModel(func(o *openaimodel.Options) {
				if modelID != "" {
					o.Model = modelID
				}
			}), nil
		},
	})

	r.Register(core.ProviderClaude, Provider{
		CredentialPresent: envPresent(EnvAnthropicAPIKey),
		Build: func(modelID string) (model.Model, error) {
			return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
				if modelID != "" {
					o.Model = anthropic.Model(modelID)
				}
			}), nil
		},
	})

	r.Register(core.ProviderGemini, Provider{
		CredentialPresent: envPresent(EnvGeminiAPIKey),
		Build: func(modelID string) (model.Model, error) {
			return geminimodel.NewModel(func(o *geminimodel.Options) {
				if modelID != "" {
					o.Model = modelID
				}
				o.APIKey = os.Getenv(EnvGeminiAPIKey)
			}), nil
		},
	})

	r.Register(core.ProviderGroq, Provider{
		CredentialPresent: envPresent(EnvGroqAPIKey),
		Build: func(modelID string) (model.Model, error) {
			return groqmodel.NewModel(func(o *groqmodel.Options) {
				if modelID != "" {
					o.Model = modelID
				}
				o.APIKey = os.Getenv(EnvGroqAPIKey)
			}), nil
		},
	})

	return r
}

// Register adds or replaces a provider.
func (r *ProviderRegistry) Register(p core.ModelProvider, provider Provider) {
	r.providers[p] = provider
}

// Known reports whether a provider is registered.
func (r *ProviderRegistry) Known(p core.ModelProvider) bool {
	_, ok := r.providers[p]
	return ok
}

// CredentialPresent reports whether the provider's credential is available.
// Unknown providers report false.
func (r *ProviderRegistry) CredentialPresent(p core.ModelProvider) bool {
	provider, ok := r.providers[p]
	if !ok {
		return false
	}
	if provider.CredentialPresent == nil {
		return true
	}
	return provider.CredentialPresent()
}

// Resolve builds a model for the provider and model id.
func (r *ProviderRegistry) Resolve(p core.ModelProvider, modelID string) (model.Model, error) {
	provider, ok := r.providers[p]
	if !ok {
		return nil, fmt.Errorf("unknown model provider %q", p)
	}
	return provider.Build(modelID)
}

func envPresent(key string) func() bool {
	return func() bool { return os.Getenv(key) != "" }
}
