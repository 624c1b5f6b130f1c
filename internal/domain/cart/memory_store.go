// internal/domain/cart/memory_store.go
package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps session carts in process memory. Carts are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]Line
}

// NewMemoryStore creates an in-process cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Line)}
}

// Load returns a copy of the stored lines
func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Line(nil), m.carts[sessionID]...), nil
}

// Save replaces the stored lines; an empty cart is removed
func (m *MemoryStore) Save(_ context.Context, sessionID string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(lines) == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = append([]Line(nil), lines...)
	return nil
}

// Delete drops the session cart
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
