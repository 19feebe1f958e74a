// Package evaluation summarizes finished trajectories.
package evaluation

import (
	"fmt"

	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
)

// Report summarizes one run.
type Report struct {
	RunID string `json:"run_id"`
	CarID string `json:"car_id"`

	Ticks    int `json:"ticks"`
	Applied  int `json:"applied"`
	Dropped  int `json:"dropped"`
	Rejected int `json:"rejected"`
	Clamped  int `json:"clamped"`

	// DropRate is Dropped/Ticks, 0 for empty runs. It converges on 0.2.
	DropRate float64 `json:"drop_rate"`
	// PathLength is the sum of per-tick Manhattan displacements.
	PathLength int `json:"path_length"`
	// Displacement is final position minus start position.
	Displacement core.Vec `json:"displacement"`
	// MaxSpeedTicks counts ticks ending with an axis at the velocity bound.
	MaxSpeedTicks int `json:"max_speed_ticks"`

	Start        core.Vec `json:"start"`
	Position     core.Vec `json:"position"`
	Velocity     core.Vec `json:"velocity"`
	Acceleration core.Vec `json:"acceleration"`
}

// String renders a one-line summary.
func (r Report) String() string {
	return fmt.Sprintf(
		"run %s: %d ticks (%d applied, %d dropped, %d rejected, %d clamped), path %d, displacement %s, final position %s velocity %s",
		r.RunID, r.Ticks, r.Applied, r.Dropped, r.Rejected, r.Clamped, r.PathLength, r.Displacement, r.Position, r.Velocity,
	)
}

// Evaluator scores a trajectory.
type Evaluator interface {
	Evaluate(t *core.Trajectory) (Report, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(t *core.Trajectory) (Report, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(t *core.Trajectory) (Report, error) { return f(t) }

// Default returns the Evaluator backed by Summarize.
func Default() Evaluator {
	return EvaluatorFunc(func(t *core.Trajectory) (Report, error) {
		if t == nil {
			return Report{}, fmt.Errorf("nil trajectory")
		}
		return Summarize(t), nil
	})
}

// Summarize computes a Report for t.
func Summarize(t *core.Trajectory) Report {
	events := t.GetEvents()
	r := Report{RunID: t.ID, CarID: t.CarID, Ticks: len(events)}
	if len(events) == 0 {
		return r
	}

	r.Start = events[0].PrevPosition
	for _, ev := range events {
		switch ev.Outcome {
		case core.OutcomeApplied:
			r.Applied++
		case core.OutcomeDropped:
			r.Dropped++
		case core.OutcomeRejected:
			r.Rejected++
		}
		if ev.Clamped {
			r.Clamped++
		}
		if abs(ev.Velocity.X) == car.MaxSpeed || abs(ev.Velocity.Y) == car.MaxSpeed {
			r.MaxSpeedTicks++
		}
		r.PathLength += ev.Displacement().Manhattan()
	}

	last := events[len(events)-1]
	r.Position = last.Position
	r.Velocity = last.Velocity
	r.Acceleration = last.Acceleration
	r.Displacement = last.Position.Sub(r.Start)
	r.DropRate = float64(r.Dropped) / float64(r.Ticks)

	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
