package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hupe1980/agentfleet/core"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a durable ConversationStore backed by SQLite. One row per
// message, partitioned by namespace. WAL mode keeps concurrent readers cheap
// while single-writer semantics match the append-only workload.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary initializes) the conversation
// database at path. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open conversation db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			namespace TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			specialist TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_namespace ON messages(namespace, id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize conversation schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// History implements core.ConversationStore.
func (s *SQLiteStore) History(ctx context.Context, namespace string, limit int) ([]core.Message, error) {
	query := `
		SELECT role, content, specialist, created_at FROM (
			SELECT id, role, content, specialist, created_at
			FROM messages WHERE namespace = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}

	rows, err := s.db.QueryContext(ctx, query, namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var m core.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Specialist, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Append implements core.ConversationStore. Messages are written in one
// transaction so a conversation never records half an exchange.
func (s *SQLiteStore) Append(ctx context.Context, namespace string, msgs ...core.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (namespace, role, content, specialist, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, namespace, m.Role, m.Content, m.Specialist, m.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}
