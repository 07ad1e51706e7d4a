// Package team assembles instance configurations into runnable orchestrators:
// a router plus one specialist per agent spec, each bound to its resolved
// model and tool capabilities. Factory.Build is the polymorphic entry point;
// it validates the variable-shaped configuration against the closed provider
// and tool registries and returns typed build errors.
package team

import (
	"context"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
)

// Team is the assembled orchestrator for one instance configuration. It
// implements core.Orchestrator: route the message to exactly one specialist,
// return that specialist's reply. Teams are immutable after assembly and safe
// for concurrent use across sessions.
type Team struct {
	router      *router
	specialists []*Specialist
	byName      map[string]*Specialist
	version     int64
	logger      logging.Logger
}

// Version returns the configuration version this team was built from.
func (t *Team) Version() int64 { return t.version }

// Roster implements core.Orchestrator.
func (t *Team) Roster() []string {
	names := make([]string, len(t.specialists))
	for i, s := range t.specialists {
		names[i] = s.Name()
	}
	return names
}

// Specialist returns a team member by name.
func (t *Team) Specialist(name string) (*Specialist, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Answer implements core.Orchestrator. Routing failures and specialist
// failures surface as *core.DispatchError; the team itself remains valid and
// cached.
func (t *Team) Answer(ctx context.Context, history []core.Message, message string) (core.Reply, error) {
	name, err := t.router.route(ctx, t.specialists, history, message)
	if err != nil {
		return core.Reply{}, &core.DispatchError{Stage: "routing", Err: err}
	}

	specialist, ok := t.byName[name]
	if !ok {
		// The router replied with something that names no team member.
		// Fall back to the first specialist rather than failing the turn.
		specialist = t.specialists[0]
		t.logger.Warn("team.route.fallback", "selected", name, "fallback", specialist.Name())
	}

	content, err := specialist.Respond(ctx, history, message)
	if err != nil {
		return core.Reply{}, &core.DispatchError{Stage: "specialist", Specialist: specialist.Name(), Err: err}
	}

	return core.Reply{Content: content, Specialist: specialist.Name()}, nil
}
