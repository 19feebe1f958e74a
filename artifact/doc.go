// Package artifact contains concrete implementations of core.ArtifactStore,
// the store for documents a run exports (such as its GeoJSON trajectory).
//
// The interface lives in the core package to keep domain contracts central.
// Callers should depend on the core interface rather than concrete types so
// they can substitute alternative persistence layers.
package artifact
