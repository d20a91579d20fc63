package storage

import (
	"context"
	"sync"
)

// MemoryScope keeps values in process memory
type MemoryScope struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryScope() *MemoryScope {
	return &MemoryScope{values: make(map[string]string)}
}

func (m *MemoryScope) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryScope) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryScope) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
