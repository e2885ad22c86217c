package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	thread_id  TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists session records in SQLite so threads survive process
// restarts. Expired records are pruned on read.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the session database at path.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, types.WrapError(types.SESSION_STORE_FAILED, "failed to open session database", err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, types.WrapError(types.SESSION_STORE_FAILED, "failed to initialize session schema", err)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, threadID string) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx,
		`SELECT thread_id, payload, version, updated_at FROM sessions WHERE thread_id = ?`,
		threadID).Scan(&r.ThreadID, (*[]byte)(&r.Payload), &r.Version, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.SESSION_NOT_FOUND, "no session for thread "+threadID)
	}
	if err != nil {
		return nil, types.WrapError(types.SESSION_STORE_FAILED, "failed to load session", err)
	}

	if s.ttl > 0 && s.now().Sub(r.UpdatedAt) > s.ttl {
		if err := s.Delete(ctx, threadID); err != nil {
			return nil, err
		}
		return nil, types.NewError(types.SESSION_NOT_FOUND, "session for thread "+threadID+" expired")
	}
	return &r, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, threadID string, payload json.RawMessage) (*Record, error) {
	if threadID == "" {
		return nil, types.NewError(types.SESSION_STORE_FAILED, "thread ID cannot be empty")
	}

	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (thread_id, payload, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			payload = excluded.payload,
			version = sessions.version + 1,
			updated_at = excluded.updated_at`,
		threadID, []byte(payload), now)
	if err != nil {
		return nil, types.WrapError(types.SESSION_STORE_FAILED, "failed to store session", err)
	}

	return s.Get(ctx, threadID)
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE thread_id = ?`, threadID); err != nil {
		return types.WrapError(types.SESSION_STORE_FAILED, "failed to delete session", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
