// Package engine manages a fleet of independent cars.
//
// # Core Responsibilities
//
// Car Management:
//   - Thread-safe car registry keyed by car ID
//   - Start/finish markers stored beside, not inside, each car
//
// Run Orchestration:
//   - Asynchronous (Drive) and synchronous (DriveSync) runs
//   - Parallel runs of many cars (DriveAll)
//   - Bounded concurrency (Config.MaxConcurrentRuns)
//   - At most one run per car at a time (ErrCarBusy)
//   - Cancellation through Stop or the caller's context
//
// Persistence:
//   - Every step event is appended to the TrajectoryStore
//   - Finished trajectories are exported to the ArtifactStore as GeoJSON
//
// Cars never interact: each run owns its car and the car's private random
// source, so runs of different cars share nothing but the stores.
package engine
