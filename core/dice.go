package core

// Dice is the random source a car draws its failure outcome from. IntN
// returns a uniform integer in [0, n). *math/rand/v2.Rand satisfies it.
type Dice interface {
	IntN(n int) int
}
