package artifact

import (
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/racetrack/core"
)

// InMemoryStore is a trivial in-process ArtifactStore implementation useful
// for tests, examples and single-process simulations. It keeps all artifacts
// in a nested map guarded by an RWMutex. Data is copied on save / retrieval to
// avoid accidental external mutation of internal buffers.
//
// Layout: runID -> artifact name -> artifact
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string]core.Artifact
	now       func() time.Time
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string]core.Artifact), now: time.Now}
}

// Save stores (or overwrites) the named artifact for the run. The data slice
// is copied and Saved is stamped when left zero.
func (a *InMemoryStore) Save(runID string, art core.Artifact) error {
	if art.Name == "" {
		return ErrEmptyName
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[runID]; !exists {
		a.artifacts[runID] = make(map[string]core.Artifact)
	}
	if art.Saved.IsZero() {
		art.Saved = a.now()
	}
	art.Data = cloneBytes(art.Data)
	a.artifacts[runID][art.Name] = art
	return nil
}

// Get returns a copy of the stored artifact or ErrNotFound.
func (a *InMemoryStore) Get(runID, name string) (core.Artifact, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.artifacts[runID]
	if !ok {
		return core.Artifact{}, ErrNotFound
	}
	art, ok := m[name]
	if !ok {
		return core.Artifact{}, ErrNotFound
	}
	art.Data = cloneBytes(art.Data)
	return art, nil
}

// List returns the sorted artifact names stored for the run.
func (a *InMemoryStore) List(runID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.artifacts[runID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(runID, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.artifacts[runID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[name]; !ok {
		return ErrNotFound
	}
	delete(m, name)
	return nil
}

func cloneBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
