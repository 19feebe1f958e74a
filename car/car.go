package car

import (
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/logging"
)

const (
	// MaxSpeed bounds each velocity axis to [-MaxSpeed, MaxSpeed].
	MaxSpeed = 5
	// FailureOutcomes is the number of equally likely failure-draw outcomes.
	FailureOutcomes = 5
	// FailureSentinel is the draw outcome that drops a command (1 in FailureOutcomes).
	FailureSentinel = 0
)

// Options configures a Car.
type Options struct {
	// ID identifies the car in events and logs. Defaults to a fresh UUID.
	ID string
	// Dice is the car's private random source. Defaults to NewDice with a
	// random seed; inject a seeded or scripted source for reproducible runs.
	Dice core.Dice
	// Logger receives the car's diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Observer, if set, is called with every completed step.
	Observer func(core.StepEvent)
}

// Car is the kinematic agent: position, velocity, cumulative acceleration and
// tick count on an unbounded integer grid.
//
// A Car is not safe for concurrent use. Each Step is a complete synchronous
// unit; drivers that run several cars give each its own Car and Dice.
type Car struct {
	id           string
	position     core.Vec
	velocity     core.Vec
	acceleration core.Vec
	tick         int

	dice     core.Dice
	logger   logging.Logger
	observer func(core.StepEvent)
}

// New creates a car at rest at the origin with zero acceleration and tick 0.
func New(optFns ...func(o *Options)) *Car {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = core.NewID()
	}
	if opts.Dice == nil {
		opts.Dice = NewRandomDice()
	}

	return &Car{
		id:       opts.ID,
		dice:     opts.Dice,
		logger:   logging.OrNoOp(opts.Logger),
		observer: opts.Observer,
	}
}

// Step advances the car by one tick:
//
//  1. Failure draw: one outcome in FailureOutcomes drops the command.
//  2. Command application (unless dropped): a valid command is added to the
//     acceleration total; an invalid one is rejected as a whole.
//  3. velocity += acceleration (the running total, not the delta).
//  4. Velocity is clamped to [-MaxSpeed, MaxSpeed] per axis.
//  5. position += velocity.
//  6. tick++.
//
// Step always completes and always advances the tick. The returned error is
// non-nil only when the command failed validation (a *core.ValidationError);
// the tick has still advanced in that case.
func (c *Car) Step(dx, dy int) (core.StepEvent, error) {
	cmd := core.NewCommand(dx, dy)
	ev := core.NewStepEvent(c.id, cmd)
	ev.PrevPosition = c.position
	ev.PrevVelocity = c.velocity

	c.logger.Info("At tick %d an acceleration of %s is applied with current velocity %s", c.tick, cmd, c.velocity)

	var err error
	switch {
	case c.dice.IntN(FailureOutcomes) == FailureSentinel:
		ev.Outcome = core.OutcomeDropped
		c.logger.Warn("FAILURE: 20%% acceleration failure event, command %s dropped", cmd)
	default:
		if err = c.applyAcceleration(cmd); err != nil {
			ev.Outcome = core.OutcomeRejected
			ev.ErrorMessage = err.Error()
			c.logger.Error("Invalid acceleration change %s: %v", cmd, err)
		} else {
			ev.Outcome = core.OutcomeApplied
		}
	}

	c.velocity = c.velocity.Add(c.acceleration)
	ev.Clamped = c.ClampVelocity()
	c.position = c.position.Add(c.velocity)
	c.tick++

	ev.Tick = c.tick
	ev.Acceleration = c.acceleration
	ev.Velocity = c.velocity
	ev.Position = c.position

	c.logger.Info("New acceleration: %s, new velocity: %s, new tick: %d", c.acceleration, c.velocity, c.tick)

	if c.observer != nil {
		c.observer(ev)
	}

	return ev, err
}

// applyAcceleration adds a validated command to the acceleration total.
func (c *Car) applyAcceleration(cmd core.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	c.acceleration = c.acceleration.Add(cmd.Delta())
	return nil
}

// WithinVelocityLimit reports whether adding (dx, dy) to the current velocity
// would keep both axes within [-MaxSpeed, MaxSpeed]. It does not mutate the car.
func (c *Car) WithinVelocityLimit(dx, dy int) bool {
	return c.velocity.Add(core.Vec{X: dx, Y: dy}).Within(-MaxSpeed, MaxSpeed)
}

// ClampVelocity forces each out-of-range velocity axis to its nearest bound
// and reports whether any clamping was necessary.
func (c *Car) ClampVelocity() bool {
	var clamped bool
	c.velocity, clamped = c.velocity.Clamp(-MaxSpeed, MaxSpeed)
	return clamped
}

// ResetVelocity zeroes both velocity axes. Step never calls it; drivers use
// it between ticks, e.g. to stop a car after a collision.
func (c *Car) ResetVelocity() {
	c.velocity = core.Vec{}
}

// ID returns the car identifier.
func (c *Car) ID() string { return c.id }

// Position returns the current position.
func (c *Car) Position() core.Vec { return c.position }

// Velocity returns the current velocity.
func (c *Car) Velocity() core.Vec { return c.velocity }

// Acceleration returns the cumulative acceleration total.
func (c *Car) Acceleration() core.Vec { return c.acceleration }

// Tick returns the number of completed steps.
func (c *Car) Tick() int { return c.tick }

// Observe returns a snapshot of the car for policies.
func (c *Car) Observe() core.Observation {
	return core.Observation{
		CarID:        c.id,
		Tick:         c.tick,
		Position:     c.position,
		Velocity:     c.velocity,
		Acceleration: c.acceleration,
	}
}
