// Package artifact provides ArtifactStore implementations for binary
// payloads produced during runs, e.g. code snapshots written by the fix
// pipeline.
package artifact

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// InMemoryStore is a process local ArtifactStore keeping all artifacts in a
// nested map guarded by an RWMutex. Data is copied on save and retrieval to
// avoid accidental external mutation of internal buffers.
//
// Layout: sessionID -> artifactID -> raw bytes
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given session and id.
// The input slice is copied before storage.
func (a *InMemoryStore) Save(sessionID, artifactID string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.artifacts[sessionID]; !exists {
		a.artifacts[sessionID] = make(map[string][]byte)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[sessionID][artifactID] = cp

	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(sessionID, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.artifacts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	data, ok := m[artifactID]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

// List returns the artifact ids stored for the session. The slice is a
// snapshot and safe for caller mutation.
func (a *InMemoryStore) List(sessionID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.artifacts[sessionID]
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	return ids, nil
}
