package core

import (
	"errors"
	"fmt"
)

// ErrInstanceNotFound is returned when a chat or listing targets a
// (tenant, instance) pair that was never upserted. Creation happens only
// through the configuration upsert path.
var ErrInstanceNotFound = errors.New("instance not found")

// BuildReason categorizes why TeamFactory rejected or failed to assemble a
// configuration. Validation reasons are permanent for a given config version;
// PROVIDER_UNAVAILABLE is transient and safe to retry.
type BuildReason string

const (
	// BuildEmptyTeam indicates a configuration with no agents.
	BuildEmptyTeam BuildReason = "EMPTY_TEAM"
	// BuildDuplicateAgentName indicates two agents sharing a name.
	BuildDuplicateAgentName BuildReason = "DUPLICATE_AGENT_NAME"
	// BuildUnknownToolType indicates a tool kind outside the known set.
	BuildUnknownToolType BuildReason = "UNKNOWN_TOOL_TYPE"
	// BuildUnknownModelProvider indicates a provider outside the known set.
	BuildUnknownModelProvider BuildReason = "UNKNOWN_MODEL_PROVIDER"
	// BuildMissingCredential indicates a known provider whose credential is
	// not available in the environment.
	BuildMissingCredential BuildReason = "MISSING_CREDENTIAL"
	// BuildProviderUnavailable indicates a transient assembly failure while
	// reaching an external dependency.
	BuildProviderUnavailable BuildReason = "PROVIDER_UNAVAILABLE"
)

// BuildError reports a failed team assembly. The instance cache never stores
// an entry for a failed build, so a later request retries naturally.
type BuildError struct {
	Reason BuildReason `json:"reason"`
	Agent  string      `json:"agent,omitempty"` // offending agent name, when applicable
	Detail string      `json:"detail,omitempty"`
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("team build failed [%s]", e.Reason)
	if e.Agent != "" {
		msg += fmt.Sprintf(" agent=%q", e.Agent)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Temporary reports whether retrying the same configuration could succeed.
func (e *BuildError) Temporary() bool {
	return e.Reason == BuildProviderUnavailable
}

// NewBuildError constructs a BuildError for the given reason.
func NewBuildError(reason BuildReason, agent, detail string) *BuildError {
	return &BuildError{Reason: reason, Agent: agent, Detail: detail}
}

// DispatchError reports a failure while running an already-built orchestrator:
// routing, a specialist's model call, or a tool call. It never invalidates the
// cache entry; the team itself is presumed structurally valid.
type DispatchError struct {
	Stage      string // "routing", "specialist" or "tool"
	Specialist string // specialist involved, when known
	Err        error
}

func (e *DispatchError) Error() string {
	if e.Specialist != "" {
		return fmt.Sprintf("dispatch failed at %s (specialist %q): %v", e.Stage, e.Specialist, e.Err)
	}
	return fmt.Sprintf("dispatch failed at %s: %v", e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
