// Package car implements the kinematic agent of a racetrack scenario: a car on
// an unbounded integer grid whose acceleration commands are subject to a 20%
// random failure and whose velocity is clamped to [-5, 5] per axis.
//
// The car owns its random source (core.Dice) and reports diagnostics through
// an injected logging.Logger, so the transition function has no hidden global
// state. Start/finish markers are deliberately not part of the car; see the
// marker package.
package car
