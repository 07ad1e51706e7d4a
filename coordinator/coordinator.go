// Package coordinator is the per-request entry point consumed by the
// transport layer. For each chat message it reads the current configuration
// version, obtains a fresh-or-cached orchestrator from the instance cache,
// binds session memory, dispatches, and returns the reply. It also owns the
// configuration upsert path including the cache invalidation contract.
package coordinator

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentfleet/cache"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/internal/util"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/session"
	"github.com/hupe1980/agentfleet/team"
)

// ChatRequest is one incoming message addressed to a tenant's instance
// within a session.
type ChatRequest struct {
	TenantID   string `json:"tenant_id"`
	InstanceID string `json:"instance_id"`
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
}

// ChatResponse carries the reply plus the echoed session id for client
// correlation.
type ChatResponse struct {
	Response   string `json:"response"`
	SessionID  string `json:"session_id"`
	Specialist string `json:"specialist,omitempty"`
	Success    bool   `json:"success"`
}

// UpsertRequest creates or replaces an instance configuration.
type UpsertRequest struct {
	TenantID           string           `json:"tenant_id"`
	InstanceID         string           `json:"instance_id"`
	RouterInstructions string           `json:"router_instructions,omitempty"`
	Agents             []core.AgentSpec `json:"agents,omitempty"`
}

// Options configures a Coordinator.
type Options struct {
	// Logger receives request lifecycle diagnostics.
	Logger logging.Logger
}

// Coordinator wires the configuration store, instance cache, team factory
// and memory binder together. Safe for concurrent use.
type Coordinator struct {
	store   core.ConfigStore
	cache   *cache.InstanceCache
	factory *team.Factory
	binder  *session.Binder
	logger  logging.Logger
}

// New constructs a Coordinator from its collaborators.
func New(
	store core.ConfigStore,
	instanceCache *cache.InstanceCache,
	factory *team.Factory,
	binder *session.Binder,
	optFns ...func(o *Options),
) *Coordinator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{
		store:   store,
		cache:   instanceCache,
		factory: factory,
		binder:  binder,
		logger:  opts.Logger,
	}
}

// Handle processes one chat request end to end. Build failures surface as
// *core.BuildError, dispatch failures as *core.DispatchError, and an unknown
// instance as core.ErrInstanceNotFound; the transport maps each to a status.
func (c *Coordinator) Handle(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	requestID := util.NewID()
	c.logger.Debug("request.start",
		"request_id", requestID,
		"tenant_id", req.TenantID,
		"instance_id", req.InstanceID,
		"session_id", req.SessionID,
	)

	// Cheap staleness probe; the full document is fetched only on a build.
	version, err := c.store.Version(ctx, req.TenantID, req.InstanceID)
	if err != nil {
		return nil, err
	}

	key := core.InstanceKey{TenantID: req.TenantID, InstanceID: req.InstanceID}
	orch, err := c.cache.GetOrBuild(ctx, key, version, func(buildCtx context.Context) (core.Orchestrator, error) {
		cfg, err := c.store.Get(buildCtx, req.TenantID, req.InstanceID)
		if err != nil {
			return nil, fmt.Errorf("fetch config for build: %w", err)
		}
		return c.factory.Build(cfg)
	})
	if err != nil {
		return nil, err
	}

	bound := c.binder.Bind(orch, req.TenantID, req.InstanceID, req.SessionID)
	reply, err := bound.Run(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	c.logger.Info("request.done",
		"request_id", requestID,
		"tenant_id", req.TenantID,
		"instance_id", req.InstanceID,
		"session_id", req.SessionID,
		"specialist", reply.Specialist,
	)

	return &ChatResponse{
		Response:   reply.Content,
		SessionID:  req.SessionID,
		Specialist: reply.Specialist,
		Success:    true,
	}, nil
}

// UpsertInstance creates or replaces a configuration document and
// invalidates the cached orchestrator exactly once after a successful write.
func (c *Coordinator) UpsertInstance(ctx context.Context, req UpsertRequest) (*core.InstanceConfig, error) {
	instructions := req.RouterInstructions
	if instructions == "" {
		instructions = core.DefaultRouterInstructions
	}

	stored, err := c.store.Upsert(ctx, &core.InstanceConfig{
		TenantID:           req.TenantID,
		InstanceID:         req.InstanceID,
		RouterInstructions: instructions,
		Agents:             req.Agents,
	})
	if err != nil {
		return nil, err
	}

	c.cache.Invalidate(stored.Key())

	c.logger.Info("instance.upserted",
		"tenant_id", stored.TenantID,
		"instance_id", stored.InstanceID,
		"version", stored.Version,
		"agents", len(stored.Agents),
	)

	return stored, nil
}

// ListInstances returns every configuration owned by a tenant. Pure
// passthrough to the store; listing is not a cache concern.
func (c *Coordinator) ListInstances(ctx context.Context, tenantID string) ([]*core.InstanceConfig, error) {
	return c.store.List(ctx, tenantID)
}
