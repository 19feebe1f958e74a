// Package trajectory houses the concrete core.TrajectoryStore implementation
// and the GeoJSON export of recorded runs.
//
// The interface itself (and the Trajectory struct) live in the core package.
// Add additional backends in sub-packages without changing any calling code;
// only the wiring layer decides which implementation to instantiate.
package trajectory
