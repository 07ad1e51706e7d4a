// Package agentfleet provides a high-level façade over the request
// coordinator and its services (configuration store, instance cache, team
// factory & session memory) enabling rapid construction of tenant-scoped
// multi-agent chat systems. Most applications interact with this package by:
//  1. Creating an AgentFleet via New() (optionally overriding default in-memory stores)
//  2. Upserting one or more instance configurations (UpsertInstance)
//  3. Sending chat messages (Chat), each scoped to a tenant, instance and session
//
// The façade delegates per-request orchestration to coordinator.Coordinator
// while keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply the
// SQLite store implementations and a structured logger.
package agentfleet

import (
	"context"

	"github.com/hupe1980/agentfleet/cache"
	"github.com/hupe1980/agentfleet/coordinator"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/session"
	"github.com/hupe1980/agentfleet/store"
	"github.com/hupe1980/agentfleet/team"
)

// Options configures the AgentFleet instance.
type Options struct {
	// ConfigStore holds instance configurations (defaults to in-memory).
	ConfigStore core.ConfigStore

	// ConversationStore holds session history (defaults to in-memory).
	ConversationStore core.ConversationStore

	// Factory assembles teams from configurations. The default uses the
	// built-in provider and tool registries with env-based credentials.
	Factory *team.Factory

	// HistoryLimit caps how many prior messages are replayed per request.
	HistoryLimit int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentFleet is the high-level façade aggregating the coordinator and its
// services.
type AgentFleet struct {
	opts  Options
	coord *coordinator.Coordinator
}

// New creates a new AgentFleet instance with optional overrides. Any unset
// store is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentFleet {
	opts := Options{
		ConfigStore:       store.NewInMemoryStore(),
		ConversationStore: session.NewInMemoryStore(),
		HistoryLimit:      40,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Factory == nil {
		opts.Factory = team.NewFactory(func(o *team.FactoryOptions) {
			o.Logger = opts.Logger
		})
	}

	binder := session.NewBinder(opts.ConversationStore, func(o *session.BinderOptions) {
		o.HistoryLimit = opts.HistoryLimit
		o.Logger = opts.Logger
	})

	instanceCache := cache.NewInstanceCache(func(o *cache.Options) {
		o.Logger = opts.Logger
	})

	coord := coordinator.New(opts.ConfigStore, instanceCache, opts.Factory, binder, func(o *coordinator.Options) {
		o.Logger = opts.Logger
	})

	return &AgentFleet{opts: opts, coord: coord}
}

// Chat dispatches one message to the tenant's instance within a session and
// returns the specialist's reply.
func (f *AgentFleet) Chat(ctx context.Context, tenantID, instanceID, sessionID, message string) (*coordinator.ChatResponse, error) {
	return f.coord.Handle(ctx, coordinator.ChatRequest{
		TenantID:   tenantID,
		InstanceID: instanceID,
		SessionID:  sessionID,
		Message:    message,
	})
}

// UpsertInstance creates or replaces an instance configuration and returns
// the stored document with its bumped version.
func (f *AgentFleet) UpsertInstance(ctx context.Context, req coordinator.UpsertRequest) (*core.InstanceConfig, error) {
	return f.coord.UpsertInstance(ctx, req)
}

// ListInstances returns every configuration owned by a tenant.
func (f *AgentFleet) ListInstances(ctx context.Context, tenantID string) ([]*core.InstanceConfig, error) {
	return f.coord.ListInstances(ctx, tenantID)
}

// Coordinator exposes the underlying coordinator for transports that need
// direct access, such as the HTTP server.
func (f *AgentFleet) Coordinator() *coordinator.Coordinator { return f.coord }
