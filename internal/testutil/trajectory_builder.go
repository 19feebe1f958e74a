package testutil

import "github.com/hupe1980/racetrack/core"

// TrajectoryBuilder provides a fluent helper for constructing trajectories in
// tests without running a car. Each Step appends an event whose state follows
// from the previous one, so the result is internally consistent.
// Example:
//
//	tr := NewTrajectoryBuilder("run-1", "car-1").Applied(1, 0).Dropped(1, 0).Build()
type TrajectoryBuilder struct {
	runID, carID string
	position     core.Vec
	velocity     core.Vec
	acceleration core.Vec
	tick         int
	events       []core.StepEvent
	metadata     map[string]string
}

// NewTrajectoryBuilder creates a builder for a car at rest at the origin.
func NewTrajectoryBuilder(runID, carID string) *TrajectoryBuilder {
	return &TrajectoryBuilder{runID: runID, carID: carID, metadata: map[string]string{}}
}

// Applied appends a step whose command took effect (chainable).
func (b *TrajectoryBuilder) Applied(dx, dy int) *TrajectoryBuilder {
	return b.step(core.NewCommand(dx, dy), core.OutcomeApplied)
}

// Dropped appends a step whose command was dropped by the failure draw (chainable).
func (b *TrajectoryBuilder) Dropped(dx, dy int) *TrajectoryBuilder {
	return b.step(core.NewCommand(dx, dy), core.OutcomeDropped)
}

// Rejected appends a step whose command failed validation (chainable).
func (b *TrajectoryBuilder) Rejected(dx, dy int) *TrajectoryBuilder {
	return b.step(core.NewCommand(dx, dy), core.OutcomeRejected)
}

// Metadata sets a metadata key on the resulting trajectory (chainable).
func (b *TrajectoryBuilder) Metadata(key, value string) *TrajectoryBuilder {
	b.metadata[key] = value
	return b
}

func (b *TrajectoryBuilder) step(cmd core.Command, outcome core.Outcome) *TrajectoryBuilder {
	ev := core.NewStepEvent(b.carID, cmd)
	ev.RunID = b.runID
	ev.Outcome = outcome
	ev.PrevPosition = b.position
	ev.PrevVelocity = b.velocity
	if outcome == core.OutcomeApplied {
		b.acceleration = b.acceleration.Add(cmd.Delta())
	}
	if outcome == core.OutcomeRejected {
		if err := cmd.Validate(); err != nil {
			ev.ErrorMessage = err.Error()
		}
	}
	b.velocity, ev.Clamped = b.velocity.Add(b.acceleration).Clamp(-5, 5)
	b.position = b.position.Add(b.velocity)
	b.tick++
	ev.Tick = b.tick
	ev.Acceleration = b.acceleration
	ev.Velocity = b.velocity
	ev.Position = b.position
	b.events = append(b.events, ev)
	return b
}

// Build constructs the trajectory.
func (b *TrajectoryBuilder) Build() *core.Trajectory {
	tr := core.NewTrajectory(b.runID, b.carID)
	for _, ev := range b.events {
		tr.AddEvent(ev)
	}
	for k, v := range b.metadata {
		tr.SetMetadata(k, v)
	}
	return tr
}
