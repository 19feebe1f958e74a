package car

import (
	"math/rand/v2"

	"github.com/hupe1980/racetrack/core"
)

// NewDice returns a deterministic random source seeded with seed. Two cars
// built with the same seed draw the same failure outcomes.
func NewDice(seed uint64) core.Dice {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomDice returns a random source with an unpredictable seed.
func NewRandomDice() core.Dice {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
