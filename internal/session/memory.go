package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// MemoryStore keeps session records in process memory with idle-time expiry.
// Suitable for single-process deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store. Records untouched for ttl
// are dropped lazily on access; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) expired(r *Record) bool {
	return m.ttl > 0 && m.now().Sub(r.UpdatedAt) > m.ttl
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, threadID string) (*Record, error) {
	m.mu.RLock()
	r, ok := m.records[threadID]
	m.mu.RUnlock()

	if ok && m.expired(r) {
		m.mu.Lock()
		delete(m.records, threadID)
		m.mu.Unlock()
		ok = false
	}
	if !ok {
		return nil, types.NewError(types.SESSION_NOT_FOUND, "no session for thread "+threadID)
	}

	copied := *r
	return &copied, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, threadID string, payload json.RawMessage) (*Record, error) {
	if threadID == "" {
		return nil, types.NewError(types.SESSION_STORE_FAILED, "thread ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	version := 1
	if prev, ok := m.records[threadID]; ok && !m.expired(prev) {
		version = prev.Version + 1
	}

	r := &Record{
		ThreadID:  threadID,
		Payload:   append(json.RawMessage(nil), payload...),
		Version:   version,
		UpdatedAt: m.now().UTC(),
	}
	m.records[threadID] = r

	copied := *r
	return &copied, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, threadID)
	return nil
}

// Len returns the number of live (unexpired) records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.records {
		if !m.expired(r) {
			n++
		}
	}
	return n
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
