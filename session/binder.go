package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
)

// BinderOptions configures a Binder.
type BinderOptions struct {
	// HistoryLimit caps how many prior messages are replayed to the
	// orchestrator per request. 0 means unlimited.
	HistoryLimit int
	// Logger receives binding diagnostics.
	Logger logging.Logger
}

// Binder attaches per-session persistent memory to a cached orchestrator.
// The orchestrator is cached per (tenant, instance); the binding is computed
// per request, so the same team object serves any session without
// cross-contaminating history.
type Binder struct {
	store        core.ConversationStore
	historyLimit int
	logger       logging.Logger
}

// NewBinder constructs a Binder over the given conversation store.
func NewBinder(store core.ConversationStore, optFns ...func(o *BinderOptions)) *Binder {
	opts := BinderOptions{
		HistoryLimit: 40,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Binder{
		store:        store,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger,
	}
}

// Bind scopes orch to the session's memory namespace. Bind performs no I/O;
// history is read lazily when the bound orchestrator runs.
func (b *Binder) Bind(orch core.Orchestrator, tenantID, instanceID, sessionID string) *BoundOrchestrator {
	return &BoundOrchestrator{
		orch:      orch,
		store:     b.store,
		namespace: Namespace(tenantID, instanceID, sessionID),
		limit:     b.historyLimit,
		logger:    b.logger,
	}
}

// BoundOrchestrator couples an orchestrator with one session's memory
// namespace. It loads history before dispatch and persists both sides of the
// exchange afterwards.
type BoundOrchestrator struct {
	orch      core.Orchestrator
	store     core.ConversationStore
	namespace string
	limit     int
	logger    logging.Logger
}

// Namespace returns the derived memory namespace.
func (b *BoundOrchestrator) Namespace() string { return b.namespace }

// Run dispatches one message within the bound session: replay history, let
// the orchestrator answer, persist the new turns.
func (b *BoundOrchestrator) Run(ctx context.Context, message string) (core.Reply, error) {
	history, err := b.store.History(ctx, b.namespace, b.limit)
	if err != nil {
		return core.Reply{}, fmt.Errorf("load history for %s: %w", b.namespace, err)
	}

	reply, err := b.orch.Answer(ctx, history, message)
	if err != nil {
		return core.Reply{}, err
	}

	now := time.Now().UTC()
	err = b.store.Append(ctx, b.namespace,
		core.Message{Role: "user", Content: message, CreatedAt: now},
		core.Message{Role: "assistant", Content: reply.Content, Specialist: reply.Specialist, CreatedAt: now},
	)
	if err != nil {
		// The user already has the reply; losing one history write is
		// preferable to failing the request.
		b.logger.Error("session.append.failed", "namespace", b.namespace, "error", err)
	}

	return reply, nil
}
