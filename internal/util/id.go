// Package util holds small internal helpers shared across packages:
// identifier generation and the minimal JSON-schema parameter validation used
// by the tool subsystem.
package util

import "github.com/google/uuid"

// NewID returns a new random identifier suitable for correlating a single
// request across log entries.
func NewID() string {
	return uuid.NewString()
}
