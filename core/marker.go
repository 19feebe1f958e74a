package core

// Marker tags a car as a start and/or finish car. Markers are owned by the
// scenario and never consulted by the transition function.
type Marker struct {
	Start  bool `json:"start"`
	Finish bool `json:"finish"`
}

// MarkerStore keeps markers per car. Get returns the zero Marker for cars that
// were never marked.
type MarkerStore interface {
	Put(carID string, m Marker) error
	Get(carID string) (Marker, error)
	Delete(carID string) error
	List() (map[string]Marker, error)
}
