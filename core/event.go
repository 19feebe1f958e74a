package core

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to a command during a step.
type Outcome string

const (
	// OutcomeApplied means the command passed the failure draw and validation
	// and was added to the acceleration total.
	OutcomeApplied Outcome = "applied"
	// OutcomeDropped means the failure draw discarded the command.
	OutcomeDropped Outcome = "dropped"
	// OutcomeRejected means the command failed validation.
	OutcomeRejected Outcome = "rejected"
)

// StepEvent is the record of one completed transition. After emission it
// should be treated as immutable. It captures:
//   - Correlation (ID, CarID, RunID)
//   - The requested command and what became of it (Outcome, ErrorMessage)
//   - State before (PrevPosition, PrevVelocity) and after the step
//   - Whether the velocity envelope had to be enforced (Clamped)
//
// Tick is the tick count after the step, so the first step of a fresh car
// carries Tick 1.
type StepEvent struct {
	ID           string    `json:"id"`
	CarID        string    `json:"car_id"`
	RunID        string    `json:"run_id,omitempty"`
	Tick         int       `json:"tick"`
	Command      Command   `json:"command"`
	Outcome      Outcome   `json:"outcome"`
	Clamped      bool      `json:"clamped"`
	PrevPosition Vec       `json:"prev_position"`
	PrevVelocity Vec       `json:"prev_velocity"`
	Acceleration Vec       `json:"acceleration"`
	Velocity     Vec       `json:"velocity"`
	Position     Vec       `json:"position"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewStepEvent creates an event for carID with a fresh ID and UTC timestamp.
func NewStepEvent(carID string, cmd Command) StepEvent {
	return StepEvent{
		ID:        NewID(),
		CarID:     carID,
		Command:   cmd,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for cars, runs and events.
func NewID() string { return uuid.NewString() }

// Applied reports whether the command changed the acceleration total.
func (e StepEvent) Applied() bool { return e.Outcome == OutcomeApplied }

// Dropped reports whether the failure draw discarded the command.
func (e StepEvent) Dropped() bool { return e.Outcome == OutcomeDropped }

// Rejected reports whether the command failed validation.
func (e StepEvent) Rejected() bool { return e.Outcome == OutcomeRejected }

// Displacement returns how far the car moved during the step.
func (e StepEvent) Displacement() Vec { return e.Position.Sub(e.PrevPosition) }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
func (e StepEvent) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
