// Package store provides ConfigStore implementations: a durable SQLite
// document store for production and a volatile in-memory store for tests.
// Both keep exactly one live document per (tenant, instance) pair and bump
// its version on every upsert; the version is what the instance cache
// compares against to detect staleness.
package store
