package team

import (
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/model/gemini"
	"github.com/hupe1980/agentfleet/tool"
)

// FactoryOptions configures a Factory instance.
type FactoryOptions struct {
	// Providers resolves model providers; defaults to the four built-in
	// vendors with env-based credentials.
	Providers *ProviderRegistry
	// Tools resolves tool kinds; defaults to the built-in registry.
	Tools *tool.Registry
	// RouterProvider and RouterModelID select the model that performs
	// specialist selection for every team this factory builds.
	RouterProvider core.ModelProvider
	RouterModelID  string
	// Logger receives build and dispatch diagnostics.
	Logger logging.Logger
}

// Factory turns instance configurations into assembled teams. It is
// stateless and performs no caching or I/O; callers own both concerns.
type Factory struct {
	providers      *ProviderRegistry
	tools          *tool.Registry
	routerProvider core.ModelProvider
	routerModelID  string
	logger         logging.Logger
}

// NewFactory constructs a Factory with optional overrides.
func NewFactory(optFns ...func(o *FactoryOptions)) *Factory {
	opts := FactoryOptions{
		Providers:      NewDefaultProviderRegistry(),
		Tools:          tool.NewDefaultRegistry(),
		RouterProvider: core.ProviderGemini,
		RouterModelID:  gemini.DefaultModel,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Factory{
		providers:      opts.Providers,
		tools:          opts.Tools,
		routerProvider: opts.RouterProvider,
		routerModelID:  opts.RouterModelID,
		logger:         opts.Logger,
	}
}

// Build validates cfg and assembles its orchestrator. All validation failures
// return a *core.BuildError with a specific reason; no partially assembled
// team is ever returned.
func (f *Factory) Build(cfg *core.InstanceConfig) (*Team, error) {
	start := time.Now()

	if len(cfg.Agents) == 0 {
		return nil, core.NewBuildError(core.BuildEmptyTeam, "", "configuration has no agents")
	}

	seen := make(map[string]struct{}, len(cfg.Agents))
	for _, spec := range cfg.Agents {
		if _, dup := seen[spec.Name]; dup {
			return nil, core.NewBuildError(core.BuildDuplicateAgentName, spec.Name, "agent name used more than once")
		}
		seen[spec.Name] = struct{}{}
	}

	specialists := make([]*Specialist, 0, len(cfg.Agents))
	byName := make(map[string]*Specialist, len(cfg.Agents))
	for _, spec := range cfg.Agents {
		specialist, err := f.buildSpecialist(spec)
		if err != nil {
			return nil, err
		}
		specialists = append(specialists, specialist)
		byName[specialist.Name()] = specialist
	}

	routerModel, err := f.resolveModel(f.routerProvider, f.routerModelID, "")
	if err != nil {
		return nil, err
	}

	instructions := cfg.RouterInstructions
	if instructions == "" {
		instructions = core.DefaultRouterInstructions
	}

	t := &Team{
		router: &router{
			llm:          routerModel,
			instructions: instructions,
			logger:       f.logger,
		},
		specialists: specialists,
		byName:      byName,
		version:     cfg.Version,
		logger:      f.logger,
	}

	f.logger.Info("team.build.done",
		"tenant_id", cfg.TenantID,
		"instance_id", cfg.InstanceID,
		"version", cfg.Version,
		"specialists", len(specialists),
		"duration", time.Since(start),
	)

	return t, nil
}

// buildSpecialist assembles one team member: resolved model plus bound tools.
func (f *Factory) buildSpecialist(spec core.AgentSpec) (*Specialist, error) {
	llm, err := f.resolveModel(spec.Provider, spec.ModelID, spec.Name)
	if err != nil {
		return nil, err
	}

	tools := make(map[string]tool.Tool, len(spec.Tools))
	for _, ts := range spec.Tools {
		if !f.tools.Known(ts.Kind) {
			return nil, core.NewBuildError(core.BuildUnknownToolType, spec.Name, string(ts.Kind))
		}
		t, err := f.tools.Resolve(ts)
		if err != nil {
			return nil, core.NewBuildError(core.BuildProviderUnavailable, spec.Name, err.Error())
		}
		tools[t.Name()] = t
	}

	return &Specialist{
		name:   spec.Name,
		role:   spec.Role,
		llm:    llm,
		tools:  tools,
		logger: f.logger,
	}, nil
}

// resolveModel maps provider resolution failures onto the build error
// taxonomy: unknown provider, missing credential, or transient assembly
// failure.
func (f *Factory) resolveModel(p core.ModelProvider, modelID, agent string) (model.Model, error) {
	if !f.providers.Known(p) {
		return nil, core.NewBuildError(core.BuildUnknownModelProvider, agent, string(p))
	}
	if !f.providers.CredentialPresent(p) {
		return nil, core.NewBuildError(core.BuildMissingCredential, agent, "no credential for provider "+string(p))
	}
	llm, err := f.providers.Resolve(p, modelID)
	if err != nil {
		return nil, core.NewBuildError(core.BuildProviderUnavailable, agent, err.Error())
	}
	return llm, nil
}
