package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore persists messages in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		typed_at TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS messages_user_id ON messages (user_id);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, msg Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, user_id, role, content, typed_at) VALUES (?,?,?,?,?);`,
		msg.ID, msg.UserID, msg.Role, msg.Content, msg.TypedAt)
	if err != nil {
		return fmt.Errorf("sqlite append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) QueryByUser(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, typed_at FROM messages WHERE user_id = ?;`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.TypedAt); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id IN (`+placeholders+`);`, args...)
	if err != nil {
		return fmt.Errorf("sqlite batch delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
