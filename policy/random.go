package policy

import (
	"context"

	"github.com/hupe1980/racetrack/core"
)

// Random picks each axis uniformly from {-1, 0, 1}. It never exhausts.
type Random struct {
	dice core.Dice
}

// NewRandom creates a random policy drawing from dice. The dice should not be
// shared with the car it drives, or the failure draws become correlated.
func NewRandom(dice core.Dice) *Random {
	return &Random{dice: dice}
}

// Next implements core.Policy.
func (r *Random) Next(ctx context.Context, _ core.Observation) (core.Command, error) {
	if err := ctx.Err(); err != nil {
		return core.Command{}, err
	}
	return core.NewCommand(r.dice.IntN(3)-1, r.dice.IntN(3)-1), nil
}
