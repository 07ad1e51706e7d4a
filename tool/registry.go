package tool

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/hupe1980/agentfleet/core"
)

// Constructor builds a tool instance from its kind-specific options.
// Constructors must treat options defensively; they come straight from
// user-editable configuration documents.
type Constructor func(options map[string]any) (Tool, error)

// Registry maps the closed set of tool kinds to constructors. Resolution of
// an unregistered kind is an explicit error, never a silent skip; the team
// factory turns that into a build-time validation failure.
type Registry struct {
	constructors map[core.ToolKind]Constructor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[core.ToolKind]Constructor)}
}

// NewDefaultRegistry returns a registry with the built-in tools registered:
// web search and market data.
func NewDefaultRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := NewRegistry()
	r.Register(core.ToolWebSearch, func(options map[string]any) (Tool, error) {
		return NewWebSearchTool(options, opts.HTTPClient)
	})
	r.Register(core.ToolFinance, func(options map[string]any) (Tool, error) {
		return NewFinanceTool(options, opts.HTTPClient)
	})
	return r
}

// RegistryOptions configures the default registry.
type RegistryOptions struct {
	// HTTPClient is shared by the built-in HTTP-backed tools.
	HTTPClient *http.Client
}

// Register adds or replaces the constructor for a kind.
func (r *Registry) Register(kind core.ToolKind, ctor Constructor) {
	r.constructors[kind] = ctor
}

// Known reports whether a kind has a registered constructor.
func (r *Registry) Known(kind core.ToolKind) bool {
	_, ok := r.constructors[kind]
	return ok
}

// Kinds returns the registered kinds in stable order.
func (r *Registry) Kinds() []core.ToolKind {
	kinds := make([]core.ToolKind, 0, len(r.constructors))
	for k := range r.constructors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Resolve instantiates the tool described by spec. Unknown kinds return an
// error naming the kind so the factory can classify it.
func (r *Registry) Resolve(spec core.ToolSpec) (Tool, error) {
	ctor, ok := r.constructors[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown tool kind %q", spec.Kind)
	}
	t, err := ctor(spec.Options)
	if err != nil {
		return nil, fmt.Errorf("construct tool %q: %w", spec.Kind, err)
	}
	return t, nil
}
