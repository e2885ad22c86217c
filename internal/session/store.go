// Package session persists per-thread planning state between requests.
// Stores hold opaque serialized state so the planning layer owns the schema;
// versioning gives callers optimistic-concurrency checks across refinements.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/config"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Record is one thread's persisted planning state.
type Record struct {
	// ThreadID identifies the conversation thread
	ThreadID string `json:"thread_id"`

	// Payload is the serialized planning state
	Payload json.RawMessage `json:"payload"`

	// Version increments on every Put for the same thread
	Version int `json:"version"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists session records keyed by thread ID.
type Store interface {
	// Get returns the record for threadID, or SESSION_NOT_FOUND.
	Get(ctx context.Context, threadID string) (*Record, error)

	// Put stores payload for threadID, bumping the version. It returns the
	// stored record.
	Put(ctx context.Context, threadID string, payload json.RawMessage) (*Record, error)

	// Delete removes the record for threadID. Deleting an absent thread is
	// not an error.
	Delete(ctx context.Context, threadID string) error

	// Close releases store resources.
	Close() error
}

// NewStore builds the store named by cfg.Backend.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(cfg.TTL), nil
	case "sqlite":
		return NewSQLiteStore(cfg.DBPath, cfg.TTL)
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "unknown session backend: "+cfg.Backend)
	}
}
