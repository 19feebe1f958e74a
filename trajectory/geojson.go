package trajectory

import (
	"fmt"

	"github.com/hupe1980/racetrack/core"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ContentType is the media type of exported trajectories.
const ContentType = "application/geo+json"

// ArtifactName is the artifact name runners store exported trajectories under.
const ArtifactName = "trajectory.geojson"

// ToFeatureCollection converts a trajectory into GeoJSON: one LineString
// feature for the whole path (grid x/y used as planar coordinates) followed
// by one Point feature per step carrying the step's outcome and state.
func ToFeatureCollection(t *core.Trajectory) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	t = t.Clone()
	positions := t.Positions()
	if len(positions) == 0 {
		return fc
	}

	path := make(orb.LineString, 0, len(positions))
	for _, p := range positions {
		path = append(path, point(p))
	}

	pathFeature := geojson.NewFeature(path)
	pathFeature.ID = t.ID
	pathFeature.Properties["kind"] = "path"
	pathFeature.Properties["run_id"] = t.ID
	pathFeature.Properties["car_id"] = t.CarID
	pathFeature.Properties["ticks"] = t.Len()
	// metadata never shadows the built-in path properties
	for k, v := range t.Metadata {
		if _, builtin := pathFeature.Properties[k]; builtin {
			continue
		}
		pathFeature.Properties[k] = v
	}
	fc.Append(pathFeature)

	for _, ev := range t.GetEvents() {
		f := geojson.NewFeature(point(ev.Position))
		f.ID = ev.ID
		f.Properties["kind"] = "step"
		f.Properties["tick"] = ev.Tick
		f.Properties["command"] = ev.Command.String()
		f.Properties["outcome"] = string(ev.Outcome)
		f.Properties["clamped"] = ev.Clamped
		f.Properties["velocity_x"] = ev.Velocity.X
		f.Properties["velocity_y"] = ev.Velocity.Y
		f.Properties["acceleration_x"] = ev.Acceleration.X
		f.Properties["acceleration_y"] = ev.Acceleration.Y
		if ev.ErrorMessage != "" {
			f.Properties["error"] = ev.ErrorMessage
		}
		fc.Append(f)
	}

	return fc
}

// MarshalGeoJSON encodes the trajectory as a GeoJSON FeatureCollection.
func MarshalGeoJSON(t *core.Trajectory) ([]byte, error) {
	data, err := ToFeatureCollection(t).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal trajectory %s: %w", t.ID, err)
	}
	return data, nil
}

// Bound returns the planar bounding box of the visited positions.
func Bound(t *core.Trajectory) orb.Bound {
	positions := t.Positions()
	if len(positions) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, 0, len(positions))
	for _, p := range positions {
		mp = append(mp, point(p))
	}
	return mp.Bound()
}

func point(v core.Vec) orb.Point { return orb.Point{float64(v.X), float64(v.Y)} }
