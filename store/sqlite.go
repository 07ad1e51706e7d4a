package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentfleet/core"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a durable ConfigStore backed by SQLite. The agents list is
// stored as a JSON document column; the unique (tenant_id, instance_id)
// index enforces the one-live-document invariant and version is bumped
// inside the upsert transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary initializes) the configuration
// database at path. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open config db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS instances (
			tenant_id TEXT NOT NULL,
			instance_id TEXT NOT NULL,
			router_instructions TEXT NOT NULL DEFAULT '',
			agents TEXT NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (tenant_id, instance_id)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize config schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Get implements core.ConfigStore.
func (s *SQLiteStore) Get(ctx context.Context, tenantID, instanceID string) (*core.InstanceConfig, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, instance_id, router_instructions, agents, version, created_at, updated_at
		FROM instances WHERE tenant_id = ? AND instance_id = ?`,
		tenantID, instanceID,
	)
	return scanConfig(row)
}

// Version implements core.ConfigStore. This is the cheap existence/version
// probe the request path runs on every call.
func (s *SQLiteStore) Version(ctx context.Context, tenantID, instanceID string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		"SELECT version FROM instances WHERE tenant_id = ? AND instance_id = ?",
		tenantID, instanceID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s/%s: %w", tenantID, instanceID, core.ErrInstanceNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

// Upsert implements core.ConfigStore. Create if absent, else replace the
// payload and bump version, all within one transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, cfg *core.InstanceConfig) (*core.InstanceConfig, error) {
	agents, err := json.Marshal(cfg.Agents)
	if err != nil {
		return nil, fmt.Errorf("encode agents: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO instances (tenant_id, instance_id, router_instructions, agents, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (tenant_id, instance_id) DO UPDATE SET
			router_instructions = excluded.router_instructions,
			agents = excluded.agents,
			version = instances.version + 1,
			updated_at = excluded.updated_at`,
		cfg.TenantID, cfg.InstanceID, cfg.RouterInstructions, string(agents), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert instance: %w", err)
	}

	return s.Get(ctx, cfg.TenantID, cfg.InstanceID)
}

// List implements core.ConfigStore. Results are ordered by instance id.
func (s *SQLiteStore) List(ctx context.Context, tenantID string) ([]*core.InstanceConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, instance_id, router_instructions, agents, version, created_at, updated_at
		FROM instances WHERE tenant_id = ? ORDER BY instance_id`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var out []*core.InstanceConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*core.InstanceConfig, error) {
	var cfg core.InstanceConfig
	var agents string
	err := row.Scan(
		&cfg.TenantID, &cfg.InstanceID, &cfg.RouterInstructions,
		&agents, &cfg.Version, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrInstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan instance: %w", err)
	}
	if err := json.Unmarshal([]byte(agents), &cfg.Agents); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return &cfg, nil
}
