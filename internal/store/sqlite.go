package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	name TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	metadata TEXT
);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	expires_at TEXT
);
`

// SQLiteStore is the embedded-database Store implementation, backed by the
// pure-Go modernc.org/sqlite driver so the binary stays cgo-free.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite-backed store. Use ":memory:" for
// a private in-memory database.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) CreateConversation(ctx context.Context, title, metadata *string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, name, created_at, updated_at, metadata) VALUES (?, ?, ?, ?, ?)`,
		id, title, now, now, metadata)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at, metadata FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, limit int) ([]*Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at, metadata FROM conversations ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID, role, content string, metadata *string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		id, conversationID, role, content, now, metadata); err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID); err != nil {
		return "", fmt.Errorf("touch conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit message: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at, metadata FROM messages WHERE conversation_id = ? ORDER BY created_at ASC LIMIT ?`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *SQLiteStore) GetRecentMessages(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at, metadata FROM messages ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *SQLiteStore) SearchMessages(ctx context.Context, query string, limit int) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at, metadata FROM messages WHERE instr(content, ?) > 0 ORDER BY created_at DESC LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *SQLiteStore) KVSet(ctx context.Context, key string, value json.RawMessage, ttl *time.Duration) error {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	var expiresAt *string
	if ttl != nil {
		e := now.Add(*ttl).Format(time.RFC3339)
		expiresAt = &e
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, created_at, updated_at, expires_at)
		 VALUES (?, ?, COALESCE((SELECT created_at FROM kv_store WHERE key = ?), ?), ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at, expires_at = excluded.expires_at`,
		key, string(value), key, nowStr, nowStr, expiresAt)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) purgeExpired(ctx context.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at < ?`, now)
}

func (s *SQLiteStore) KVGet(ctx context.Context, key string) (*KeyValue, error) {
	s.purgeExpired(ctx)

	row := s.db.QueryRowContext(ctx,
		`SELECT key, value, created_at, updated_at, expires_at FROM kv_store WHERE key = ?`, key)

	var kv KeyValue
	var valueStr string
	var createdAt, updatedAt string
	var expiresAt *string
	if err := row.Scan(&kv.Key, &valueStr, &createdAt, &updatedAt, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get: %w", err)
	}
	kv.Value = json.RawMessage(valueStr)
	kv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	kv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if expiresAt != nil {
		if t, err := time.Parse(time.RFC3339, *expiresAt); err == nil {
			kv.ExpiresAt = &t
		}
	}
	return &kv, nil
}

func (s *SQLiteStore) KVDelete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) KVList(ctx context.Context, prefix string) ([]string, error) {
	s.purgeExpired(ctx)

	var rows *sql.Rows
	var err error
	if prefix != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT key FROM kv_store WHERE key LIKE ? ORDER BY key`, prefix+"%")
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	}
	if err != nil {
		return nil, fmt.Errorf("kv list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (*Conversation, error) {
	var c Conversation
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Title, &createdAt, &updatedAt, &c.Metadata); err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func scanMessages(rows *sql.Rows) ([]*Message, error) {
	var out []*Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &createdAt, &m.Metadata); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}
