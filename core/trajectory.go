package core

import (
	"sync"
	"time"
)

// Trajectory is the ordered step history of one run of one car plus free-form
// metadata. It is safe for concurrent access.
//
// Contract:
//   - Mutations update Updated
//   - GetEvents and Positions return defensive copies
//   - Clone performs deep copies of maps/slices for safe divergence.
type Trajectory struct {
	ID       string            `json:"id"`
	CarID    string            `json:"car_id"`
	Events   []StepEvent       `json:"events"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`
	mu       sync.RWMutex
}

// NewTrajectory creates an empty trajectory for the given run and car.
func NewTrajectory(id, carID string) *Trajectory {
	now := time.Now()
	return &Trajectory{ID: id, CarID: carID, Events: []StepEvent{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// AddEvent appends an event to the history.
func (t *Trajectory) AddEvent(ev StepEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Events = append(t.Events, ev)
	t.Updated = time.Now()
}

// SetMetadata sets a metadata key.
func (t *Trajectory) SetMetadata(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Metadata[key] = value
	t.Updated = time.Now()
}

// GetEvents returns a defensive copy of the full event slice.
func (t *Trajectory) GetEvents() []StepEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	events := make([]StepEvent, len(t.Events))
	copy(events, t.Events)
	return events
}

// Len returns the number of recorded steps.
func (t *Trajectory) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Events)
}

// Last returns the most recent event, if any.
func (t *Trajectory) Last() (StepEvent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.Events) == 0 {
		return StepEvent{}, false
	}
	return t.Events[len(t.Events)-1], true
}

// Positions returns the visited positions in order, starting with the
// position before the first recorded step. An empty trajectory yields nil.
func (t *Trajectory) Positions() []Vec {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.Events) == 0 {
		return nil
	}
	path := make([]Vec, 0, len(t.Events)+1)
	path = append(path, t.Events[0].PrevPosition)
	for _, ev := range t.Events {
		path = append(path, ev.Position)
	}
	return path
}

// Clone returns a deep copy of the trajectory safe for independent mutation.
func (t *Trajectory) Clone() *Trajectory {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &Trajectory{ID: t.ID, CarID: t.CarID, Events: make([]StepEvent, len(t.Events)), Created: t.Created, Updated: t.Updated, Metadata: make(map[string]string, len(t.Metadata))}
	copy(clone.Events, t.Events)
	for k, v := range t.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// TrajectoryStore persists trajectories keyed by run ID.
type TrajectoryStore interface {
	Create(runID, carID string) (*Trajectory, error)
	Get(runID string) (*Trajectory, error)
	AppendEvent(runID string, ev StepEvent) error
	SetMetadata(runID string, md map[string]string) error
}
