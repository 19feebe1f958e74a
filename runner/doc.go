// Package runner drives a single car with a single policy.
//
// A run asks the policy for a command, steps the car, applies the optional
// collision hook, persists the step event and streams it to the caller, until
// the tick limit is reached, the policy is exhausted, the policy fails or the
// run is cancelled. When the run ends the car's markers and the stop reason
// are written to the trajectory metadata and the trajectory is exported as a
// GeoJSON artifact.
//
// See runner.go for the operational implementation details.
package runner
