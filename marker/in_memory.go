package marker

import (
	"sync"

	"github.com/hupe1980/racetrack/core"
)

// InMemoryStore is a process-local MarkerStore protected by an RWMutex.
// Cars that were never marked read as the zero Marker.
type InMemoryStore struct {
	mu      sync.RWMutex
	markers map[string]core.Marker // carID -> marker
}

// NewInMemoryStore creates an empty marker store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{markers: make(map[string]core.Marker)}
}

// Put attaches (or replaces) the marker of a car.
func (m *InMemoryStore) Put(carID string, marker core.Marker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[carID] = marker
	return nil
}

// Get returns the car's marker, or the zero Marker if none was set.
func (m *InMemoryStore) Get(carID string) (core.Marker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.markers[carID], nil
}

// Delete removes a car's marker. Deleting an unmarked car is a no-op.
func (m *InMemoryStore) Delete(carID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, carID)
	return nil
}

// List returns a copy of all markers keyed by car ID.
func (m *InMemoryStore) List() (map[string]core.Marker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]core.Marker, len(m.markers))
	for k, v := range m.markers {
		out[k] = v
	}
	return out, nil
}

// IsStart reports whether the car is tagged as a start car.
func (m *InMemoryStore) IsStart(carID string) bool {
	mk, _ := m.Get(carID)
	return mk.Start
}

// IsFinish reports whether the car is tagged as a finish car.
func (m *InMemoryStore) IsFinish(carID string) bool {
	mk, _ := m.Get(carID)
	return mk.Finish
}
