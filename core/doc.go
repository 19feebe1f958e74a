// Package core provides the foundational domain types and interfaces shared by
// every racetrack package. It defines:
//
//   - Vec and Command (grid vectors and acceleration requests with validation)
//   - StepEvent (the immutable record of one transition)
//   - Trajectory / TrajectoryStore (per-run step history)
//   - Marker / MarkerStore (start and finish tags owned by the scenario)
//   - Artifact / ArtifactStore (documents exported by a run)
//   - Policy / Observation (how drivers choose the next command)
//   - Dice (the injectable random source of a car)
//
// The package keeps implementation concerns (physics, persistence, model
// providers) out of scope so that custom backends can be plugged in without
// touching callers.
package core
