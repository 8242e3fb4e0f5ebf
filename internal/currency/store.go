package currency

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. Default when neither
// Redis nor the durable KV store is configured for rates.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
	ok   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.ok, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.ok = true
	return nil
}
