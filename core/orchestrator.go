package core

import "context"

// Orchestrator is the assembled runtime object for one (tenant, instance)
// pair: a router plus its specialists with bound tools. Implementations are
// stateless with respect to conversations; history is supplied per call so
// the same cached orchestrator can serve any session.
//
// Answer routes the message to exactly one specialist and returns its reply.
// The router selects, it never answers.
type Orchestrator interface {
	Answer(ctx context.Context, history []Message, message string) (Reply, error)

	// Roster returns the specialist names in configuration order.
	Roster() []string
}
