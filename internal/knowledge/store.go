package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Store is a Retriever with write access to the underlying knowledge base.
type Store interface {
	Retriever

	// Add persists a passage. Adding a passage with an existing ID replaces it.
	Add(ctx context.Context, passage Passage) error

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Close releases store resources.
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS passages (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	source            TEXT NOT NULL,
	destination_scope TEXT NOT NULL DEFAULT '',
	text              TEXT NOT NULL,
	chunk_idx         INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_passages_scope ON passages(destination_scope);
`

// SQLiteStore persists passages in SQLite and ranks them with a Scorer at
// query time. The corpus is small (personal travel notes), so scoring in
// process after a scoped scan is fast enough and keeps ranking pluggable.
type SQLiteStore struct {
	db     *sql.DB
	scorer Scorer
	logger *slog.Logger
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithScorer overrides the default lexical scorer.
func WithScorer(s Scorer) SQLiteOption {
	return func(st *SQLiteStore) {
		st.scorer = s
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) SQLiteOption {
	return func(st *SQLiteStore) {
		st.logger = l
	}
}

// NewSQLiteStore opens (creating if needed) the knowledge database at path.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, types.WrapError(types.KNOWLEDGE_STORE_FAILED, "failed to open knowledge database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, types.WrapError(types.KNOWLEDGE_STORE_FAILED, "failed to initialize knowledge schema", err)
	}

	store := &SQLiteStore{
		db:     db,
		scorer: LexicalScorer{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Add implements Store.
func (s *SQLiteStore) Add(ctx context.Context, passage Passage) error {
	if err := passage.Validate(); err != nil {
		return types.WrapError(types.KNOWLEDGE_INVALID_PASSAGE, "invalid passage", err)
	}
	if passage.CreatedAt.IsZero() {
		passage.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO passages (id, title, source, destination_scope, text, chunk_idx, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			destination_scope = excluded.destination_scope,
			text = excluded.text,
			chunk_idx = excluded.chunk_idx`,
		passage.ID, passage.Title, passage.Source, passage.DestinationScope,
		passage.Text, passage.ChunkIdx, passage.CreatedAt)
	if err != nil {
		return types.WrapError(types.KNOWLEDGE_STORE_FAILED, fmt.Sprintf("failed to store passage %s", passage.ID), err)
	}

	s.logger.DebugContext(ctx, "stored knowledge passage",
		"passage_id", passage.ID,
		"scope", passage.DestinationScope)
	return nil
}

// Search implements Retriever.
func (s *SQLiteStore) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source, destination_scope, text, chunk_idx, created_at
		FROM passages
		WHERE destination_scope = '' OR ? = '' OR LOWER(destination_scope) = LOWER(?)`,
		opts.DestinationScope, opts.DestinationScope)
	if err != nil {
		return nil, types.WrapError(types.KNOWLEDGE_QUERY_FAILED, "knowledge query failed", err)
	}
	defer rows.Close()

	var candidates []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.ID, &p.Title, &p.Source, &p.DestinationScope, &p.Text, &p.ChunkIdx, &p.CreatedAt); err != nil {
			return nil, types.WrapError(types.KNOWLEDGE_QUERY_FAILED, "failed to scan passage row", err)
		}
		candidates = append(candidates, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.KNOWLEDGE_QUERY_FAILED, "knowledge row iteration failed", err)
	}

	return rankPassages(s.scorer, query, candidates, opts), nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, types.WrapError(types.KNOWLEDGE_STORE_FAILED, "failed to count passages", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	passages map[string]Passage
	order    []string
	scorer   Scorer
}

// NewMemoryStore returns an empty in-memory store using the lexical scorer.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		passages: make(map[string]Passage),
		scorer:   LexicalScorer{},
	}
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, passage Passage) error {
	if err := passage.Validate(); err != nil {
		return types.WrapError(types.KNOWLEDGE_INVALID_PASSAGE, "invalid passage", err)
	}
	if passage.CreatedAt.IsZero() {
		passage.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.passages[passage.ID]; !exists {
		m.order = append(m.order, passage.ID)
	}
	m.passages[passage.ID] = passage
	return nil
}

// Search implements Retriever.
func (m *MemoryStore) Search(_ context.Context, query string, opts SearchOptions) ([]Result, error) {
	m.mu.RLock()
	candidates := make([]Passage, 0, len(m.order))
	for _, id := range m.order {
		candidates = append(candidates, m.passages[id])
	}
	m.mu.RUnlock()

	return rankPassages(m.scorer, query, candidates, opts), nil
}

// Count implements Store.
func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
