package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/core"
)

// InMemoryStore is a volatile ConfigStore keeping documents in a process
// local map. Safe for concurrent access; every read returns a copy so
// callers cannot mutate stored state.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[core.InstanceKey]*core.InstanceConfig
}

// NewInMemoryStore constructs an empty in-memory config store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{documents: make(map[core.InstanceKey]*core.InstanceConfig)}
}

// Get implements core.ConfigStore.
func (s *InMemoryStore) Get(_ context.Context, tenantID, instanceID string) (*core.InstanceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[core.InstanceKey{TenantID: tenantID, InstanceID: instanceID}]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", tenantID, instanceID, core.ErrInstanceNotFound)
	}
	return cloneConfig(doc), nil
}

// Version implements core.ConfigStore.
func (s *InMemoryStore) Version(_ context.Context, tenantID, instanceID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[core.InstanceKey{TenantID: tenantID, InstanceID: instanceID}]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", tenantID, instanceID, core.ErrInstanceNotFound)
	}
	return doc.Version, nil
}

// Upsert implements core.ConfigStore.
func (s *InMemoryStore) Upsert(_ context.Context, cfg *core.InstanceConfig) (*core.InstanceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stored := cloneConfig(cfg)
	stored.UpdatedAt = now

	if prev, ok := s.documents[cfg.Key()]; ok {
		stored.Version = prev.Version + 1
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.Version = 1
		stored.CreatedAt = now
	}

	s.documents[cfg.Key()] = stored
	return cloneConfig(stored), nil
}

// List implements core.ConfigStore. Results are ordered by instance id.
func (s *InMemoryStore) List(_ context.Context, tenantID string) ([]*core.InstanceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.InstanceConfig
	for key, doc := range s.documents {
		if key.TenantID == tenantID {
			out = append(out, cloneConfig(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out, nil
}

// cloneConfig deep copies a configuration document.
func cloneConfig(cfg *core.InstanceConfig) *core.InstanceConfig {
	clone := *cfg
	clone.Agents = make([]core.AgentSpec, len(cfg.Agents))
	for i, a := range cfg.Agents {
		clone.Agents[i] = a
		clone.Agents[i].Tools = make([]core.ToolSpec, len(a.Tools))
		for j, t := range a.Tools {
			clone.Agents[i].Tools[j] = t
			if t.Options != nil {
				opts := make(map[string]any, len(t.Options))
				for k, v := range t.Options {
					opts[k] = v
				}
				clone.Agents[i].Tools[j].Options = opts
			}
		}
	}
	return &clone
}
