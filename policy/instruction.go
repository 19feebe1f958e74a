package policy

import (
	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(obs core.Observation) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(obs core.Observation) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(obs core.Observation) (string, error) { return f(obs) }

// Instruction represents either a static instruction string or a dynamic
// provider. Static text may contain text/template actions; they are rendered
// against the observation (keys: car_id, tick, position_x, position_y,
// velocity_x, velocity_y, acceleration_x, acceleration_y, max_speed).
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(core.Observation) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(obs core.Observation) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(obs)
	}
	return util.RenderTemplate(i.text, observationState(obs))
}

func observationState(obs core.Observation) map[string]any {
	return map[string]any{
		"car_id":         obs.CarID,
		"tick":           obs.Tick,
		"position_x":     obs.Position.X,
		"position_y":     obs.Position.Y,
		"velocity_x":     obs.Velocity.X,
		"velocity_y":     obs.Velocity.Y,
		"acceleration_x": obs.Acceleration.X,
		"acceleration_y": obs.Acceleration.Y,
		"max_speed":      car.MaxSpeed,
	}
}
