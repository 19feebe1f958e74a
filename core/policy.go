package core

import (
	"context"
	"errors"
)

// ErrPolicyExhausted is returned by a Policy that has no further commands. A
// runner treats it as normal completion rather than failure.
var ErrPolicyExhausted = errors.New("policy exhausted")

// Observation is the read-only view of a car a Policy decides on.
type Observation struct {
	CarID        string `json:"car_id"`
	Tick         int    `json:"tick"`
	Position     Vec    `json:"position"`
	Velocity     Vec    `json:"velocity"`
	Acceleration Vec    `json:"acceleration"`
}

// Policy sources the next command for a car. Implementations may block (e.g.
// on a model call) and should honour ctx cancellation.
type Policy interface {
	Next(ctx context.Context, obs Observation) (Command, error)
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(ctx context.Context, obs Observation) (Command, error)

// Next implements Policy.
func (f PolicyFunc) Next(ctx context.Context, obs Observation) (Command, error) { return f(ctx, obs) }
