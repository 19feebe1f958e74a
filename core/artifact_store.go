package core

import "time"

// Artifact is a named document produced by a run, e.g. an exported trajectory.
type Artifact struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	Saved       time.Time `json:"saved"`
}

// ArtifactStore defines the interface for artifact persistence. Implementations
// should be thread-safe and scope artifacts by run identifier.
type ArtifactStore interface {
	Save(runID string, a Artifact) error
	Get(runID, name string) (Artifact, error)
	List(runID string) ([]string, error)
	Delete(runID, name string) error
}
