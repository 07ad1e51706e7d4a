// Package session scopes conversation state. It derives a stable memory
// namespace for each (tenant, instance, session) triple and binds cached
// orchestrators to per-session history through a ConversationStore, so one
// shared team object can serve any number of isolated conversations.
package session

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// namespacePrefix groups all conversation partitions under one recognizable
// family, matching the storage layout users see in the database.
const namespacePrefix = "team_sessions"

// Namespace derives the memory namespace for a (tenant, instance, session)
// triple. The result is a pure function of its inputs and stable across
// process restarts.
//
// The raw identifiers are embedded (sanitized) for operability, and a digest
// over the length-prefixed fields is appended so triples remain distinct even
// when identifiers contain the separator: "a_b"+"c" and "a"+"b_c" sanitize to
// the same text but never share a digest.
func Namespace(tenantID, instanceID, sessionID string) string {
	h := sha256.New()
	for _, part := range []string{tenantID, instanceID, sessionID} {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(part)))
		h.Write(lenBuf[:])
		h.Write([]byte(part))
	}
	digest := fmt.Sprintf("%x", h.Sum(nil))[:12]

	return fmt.Sprintf("%s_%s_%s_%s_%s",
		namespacePrefix,
		sanitize(tenantID),
		sanitize(instanceID),
		sanitize(sessionID),
		digest,
	)
}

// sanitize keeps identifiers readable inside the namespace without letting
// them inject separators or characters storage engines dislike.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
