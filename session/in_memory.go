package session

import (
	"context"
	"sync"

	"github.com/hupe1980/agentfleet/core"
)

// InMemoryStore is a volatile ConversationStore keeping history in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers. Returned slices are copies to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]core.Message
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string][]core.Message)}
}

// History implements core.ConversationStore.
func (s *InMemoryStore) History(_ context.Context, namespace string, limit int) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversations[namespace]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append implements core.ConversationStore.
func (s *InMemoryStore) Append(_ context.Context, namespace string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[namespace] = append(s.conversations[namespace], msgs...)
	return nil
}

// Namespaces returns every namespace that has recorded history. Intended for
// tests and diagnostics.
func (s *InMemoryStore) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.conversations))
	for ns := range s.conversations {
		out = append(out, ns)
	}
	return out
}
