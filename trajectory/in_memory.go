package trajectory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/racetrack/core"
)

// ErrNotFound is returned when no trajectory exists for a run ID.
var ErrNotFound = errors.New("trajectory not found")

// InMemoryStore is a volatile TrajectoryStore implementation storing
// trajectories in a process local map. It is safe for concurrent access and
// best suited for tests or short-lived simulations. Each returned trajectory
// is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu           sync.RWMutex
	trajectories map[string]*core.Trajectory
}

// NewInMemoryStore constructs an empty in-memory trajectory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{trajectories: make(map[string]*core.Trajectory)}
}

// Create forces the creation (or overwriting) of a trajectory for the run.
func (s *InMemoryStore) Create(runID, carID string) (*core.Trajectory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr := core.NewTrajectory(runID, carID)
	s.trajectories[runID] = tr
	return tr.Clone(), nil
}

// Get returns a clone of the trajectory for runID or ErrNotFound.
func (s *InMemoryStore) Get(runID string) (*core.Trajectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.trajectories[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return tr.Clone(), nil
}

// AppendEvent adds a step event to an existing trajectory.
func (s *InMemoryStore) AppendEvent(runID string, ev core.StepEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.trajectories[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	tr.AddEvent(ev)
	return nil
}

// SetMetadata merges md into the trajectory metadata.
func (s *InMemoryStore) SetMetadata(runID string, md map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.trajectories[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	for k, v := range md {
		tr.SetMetadata(k, v)
	}
	return nil
}

// IDs returns the run IDs currently stored.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.trajectories))
	for id := range s.trajectories {
		ids = append(ids, id)
	}
	return ids
}
