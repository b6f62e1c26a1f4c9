// Package memory provides MemoryStore implementations for long-lived recall
// across session turns.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/leadmesh/core"
)

// storedMemory is the internal representation persisted by InMemoryStore.
type storedMemory struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// InMemoryStore is a naive process local MemoryStore. Search is a linear
// scan with case sensitive substring matching assigning a constant score of
// 1.0 to every hit. Suitable for tests and demos; swap for a semantic index
// for production retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	storage map[string][]storedMemory // sessionID -> stored memories in insertion order
}

// NewInMemoryStore creates a new in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{storage: make(map[string][]storedMemory)}
}

// Store appends a new stored memory generating a simple incremental id.
func (m *InMemoryStore) Store(sessionID, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	memoryID := fmt.Sprintf("mem_%d", len(m.storage[sessionID]))
	m.storage[sessionID] = append(m.storage[sessionID], storedMemory{
		ID:       memoryID,
		Content:  content,
		Metadata: metadata,
	})

	return nil
}

// Search performs a substring match over stored memories. Results are
// returned in insertion order up to the provided limit.
func (m *InMemoryStore) Search(sessionID, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []core.SearchResult{}
	for _, stored := range m.storage[sessionID] {
		if limit > 0 && len(results) >= limit {
			break
		}
		if query != "" && !strings.Contains(stored.Content, query) {
			continue
		}

		md := make(map[string]any, len(stored.Metadata))
		for k, v := range stored.Metadata {
			md[k] = v
		}

		results = append(results, core.SearchResult{
			ID:       stored.ID,
			Content:  stored.Content,
			Score:    1.0,
			Metadata: md,
		})
	}

	return results, nil
}
