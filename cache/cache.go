// Package cache owns the mapping from (tenant, instance) to a built
// orchestrator. It coordinates concurrent builds with a per-key promise
// (singleflight), tracks the configuration version each entry was built from,
// and evicts or replaces entries on staleness or explicit invalidation.
//
// Per-key state machine:
//
//	Absent -> Building -> Ready        (successful build)
//	Absent -> Building -> Absent       (failed build; waiters get the error)
//	Ready  -> Absent                   (Invalidate)
//	Ready  -> Building                 (newer version observed; replaced wholesale)
//
// Entries are never mutated in place. Once settled, readers touch only
// immutable fields, so a Ready hit takes the table lock just long enough for
// the map lookup. Long-running work (the build itself) always happens outside
// the lock.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
)

// BuildFunc produces the orchestrator for a cache miss. The cache invokes it
// at most once per key per staleness epoch, with a context detached from any
// single caller: a client disconnect never cancels a build other waiters
// share.
type BuildFunc func(ctx context.Context) (core.Orchestrator, error)

// entry is one per-key promise. done closes when the build settles; orch and
// err are written exactly once before that and read only after, so waiters
// need no lock. version is immutable from creation.
type entry struct {
	done    chan struct{}
	version int64

	orch core.Orchestrator
	err  error
}

func (e *entry) settled() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Options configures an InstanceCache.
type Options struct {
	// Logger receives build lifecycle diagnostics.
	Logger logging.Logger
}

// InstanceCache is safe for concurrent use by any number of goroutines.
// Operations on distinct keys are independent; the single table lock is held
// only for map bookkeeping, never across a build.
type InstanceCache struct {
	mu      sync.Mutex
	entries map[core.InstanceKey]*entry
	logger  logging.Logger
}

// NewInstanceCache constructs an empty cache. Each instance is independent;
// tests can create as many as they need.
func NewInstanceCache(optFns ...func(o *Options)) *InstanceCache {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InstanceCache{
		entries: make(map[core.InstanceKey]*entry),
		logger:  opts.Logger,
	}
}

// GetOrBuild returns the cached orchestrator for key if it was built from a
// version at least as new as the one the caller observed, otherwise
// coordinates a rebuild. Concurrent callers for the same key share one build
// and observe the same outcome. The caller supplies version (read from the
// configuration store); the cache itself never polls.
//
// ctx cancellation abandons only this caller's wait; an in-flight shared
// build runs to completion for the benefit of the other waiters.
func (c *InstanceCache) GetOrBuild(
	ctx context.Context,
	key core.InstanceKey,
	version int64,
	build BuildFunc,
) (core.Orchestrator, error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[key]

		if !ok {
			e = c.startBuildLocked(key, version, build)
			c.mu.Unlock()
			return c.await(ctx, e)
		}

		if !e.settled() {
			// A build is in flight; join it no matter which version it
			// targets. If it turns out stale we re-check afterwards.
			c.mu.Unlock()
			orch, err := c.await(ctx, e)
			if err != nil || e.version >= version {
				return orch, err
			}
			continue
		}

		// Failed builds are removed on settle, so a settled entry in the
		// table is Ready. An entry at least as new as the caller's observed
		// version is a hit; a straggler that read an older version must not
		// displace a fresher build.
		if e.version >= version {
			c.mu.Unlock()
			return e.orch, nil
		}

		// Stale: replace the entry wholesale. In-flight holders of the old
		// orchestrator keep using it; new callers get the rebuilt one.
		c.logger.Info("cache.stale",
			"tenant_id", key.TenantID,
			"instance_id", key.InstanceID,
			"cached_version", e.version,
			"current_version", version,
		)
		e = c.startBuildLocked(key, version, build)
		c.mu.Unlock()
		return c.await(ctx, e)
	}
}

// startBuildLocked installs a Building entry and launches the build
// goroutine. Caller must hold c.mu.
func (c *InstanceCache) startBuildLocked(key core.InstanceKey, version int64, build BuildFunc) *entry {
	e := &entry{done: make(chan struct{}), version: version}
	c.entries[key] = e
	go c.runBuild(key, e, build)
	return e
}

// runBuild executes the build outside the table lock and settles the entry.
// A failed build removes the entry immediately so the key is not poisoned; a
// later call retries from scratch.
func (c *InstanceCache) runBuild(key core.InstanceKey, e *entry, build BuildFunc) {
	start := time.Now()
	orch, err := build(context.Background())

	c.mu.Lock()
	e.orch, e.err = orch, err
	if err != nil && c.entries[key] == e {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	close(e.done)

	if err != nil {
		c.logger.Error("cache.build.failed",
			"tenant_id", key.TenantID,
			"instance_id", key.InstanceID,
			"version", e.version,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	c.logger.Info("cache.build.done",
		"tenant_id", key.TenantID,
		"instance_id", key.InstanceID,
		"version", e.version,
		"duration", time.Since(start),
	)
}

// await blocks until the entry settles or the caller's context ends.
func (c *InstanceCache) await(ctx context.Context, e *entry) (core.Orchestrator, error) {
	select {
	case <-e.done:
		return e.orch, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate unconditionally removes the entry for key. The next GetOrBuild
// rebuilds from the latest configuration. Invalidating a key with a build in
// flight lets that build settle for its waiters without caching the result.
func (c *InstanceCache) Invalidate(key core.InstanceKey) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if existed {
		c.logger.Info("cache.invalidate",
			"tenant_id", key.TenantID,
			"instance_id", key.InstanceID,
		)
	}
}

// Len returns the number of cached entries, including in-flight builds.
func (c *InstanceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
