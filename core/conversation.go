package core

import "context"

// ConversationStore persists conversation history per memory namespace.
// The namespace is derived from (tenant, instance, session) by the session
// package; stores treat it as an opaque partition key.
type ConversationStore interface {
	// History returns the most recent messages in chronological order,
	// capped at limit (0 means no cap).
	History(ctx context.Context, namespace string, limit int) ([]Message, error)

	// Append adds messages to the namespace in order.
	Append(ctx context.Context, namespace string, msgs ...Message) error
}
