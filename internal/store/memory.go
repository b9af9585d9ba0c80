package store

import (
	"context"
	"sync"
)

// MemoryPersister keeps documents in process memory
type MemoryPersister struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{docs: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	return doc, ok, nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, document []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), document...)
	return nil
}

func (m *MemoryPersister) Close() error {
	return nil
}
