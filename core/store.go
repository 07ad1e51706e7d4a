package core

import "context"

// ConfigStore persists instance configurations: one live document per
// (tenant, instance) pair with a monotonically increasing version.
//
// Version exists so callers can run the staleness check without fetching the
// full document. Get and Version return ErrInstanceNotFound (possibly
// wrapped) for absent pairs.
type ConfigStore interface {
	// Get fetches the full configuration document.
	Get(ctx context.Context, tenantID, instanceID string) (*InstanceConfig, error)

	// Version answers the cheap "how fresh is this document" question.
	Version(ctx context.Context, tenantID, instanceID string) (int64, error)

	// Upsert creates or replaces the document, bumping its version, and
	// returns the stored state.
	Upsert(ctx context.Context, cfg *InstanceConfig) (*InstanceConfig, error)

	// List returns every configuration owned by a tenant.
	List(ctx context.Context, tenantID string) ([]*InstanceConfig, error)
}
