// Package core defines the shared domain types and service interfaces of
// AgentFleet: instance configurations, the orchestrator contract, the
// configuration and conversation stores, and the typed error taxonomy.
//
// Packages higher in the dependency graph (team, cache, session, coordinator,
// server) depend on core; core depends on nothing but the standard library.
// Interfaces are accepted, concrete structs are returned.
package core
