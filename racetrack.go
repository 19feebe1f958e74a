// Package racetrack provides a high-level façade over the engine and its
// stores for simulating racecars on an unbounded integer grid. Most
// applications interact with this package by:
//  1. Creating a Racetrack via New() (optionally overriding default in-memory stores)
//  2. Creating cars with NewCar (seeded dice, logger, observer)
//  3. Driving them with policies asynchronously (Drive) or synchronously (DriveSync)
//  4. Inspecting the results (Trajectory, Summarize, ExportGeoJSON)
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise.
package racetrack

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/racetrack/artifact"
	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/engine"
	"github.com/hupe1980/racetrack/evaluation"
	"github.com/hupe1980/racetrack/logging"
	"github.com/hupe1980/racetrack/marker"
	"github.com/hupe1980/racetrack/trajectory"
)

// Options configures the Racetrack instance.
type Options struct {
	// Engine configuration (concurrency, buffers, tick limit, export)
	EngineConfig engine.Config

	// Stores (defaults to in-memory implementations if not provided)
	TrajectoryStore core.TrajectoryStore
	ArtifactStore   core.ArtifactStore
	MarkerStore     core.MarkerStore

	// Collides, if set, stops a car (velocity reset) when it returns true
	// for the car's position after a step.
	Collides func(carID string, pos core.Vec) bool

	// Logger (defaults to NoOp logger if nil). Cars created by NewCar
	// inherit it unless they set their own.
	Logger logging.Logger
}

// Racetrack is the high-level façade aggregating the engine and stores.
type Racetrack struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new Racetrack instance with optional overrides. Any unset
// store is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Racetrack {
	opts := Options{
		EngineConfig:    engine.DefaultConfig,
		TrajectoryStore: trajectory.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		MarkerStore:     marker.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.TrajectoryStore = opts.TrajectoryStore
		o.ArtifactStore = opts.ArtifactStore
		o.MarkerStore = opts.MarkerStore
		o.Collides = opts.Collides
		o.Logger = opts.Logger
	})

	return &Racetrack{opts: opts, engine: e}
}

// Engine exposes the underlying engine.
func (r *Racetrack) Engine() *engine.Engine { return r.engine }

// NewCar creates a car and registers it.
func (r *Racetrack) NewCar(optFns ...func(o *car.Options)) *car.Car {
	optFns = append(optFns, func(o *car.Options) {
		if o.ID == "" {
			o.ID = core.NewID()
		}
		if o.Logger == nil {
			o.Logger = r.carLogger(o.ID)
		}
	})

	c := car.New(optFns...)
	r.engine.Register(c)

	return c
}

// RegisterCar adds an existing car.
func (r *Racetrack) RegisterCar(c *car.Car) { r.engine.Register(c) }

// Mark tags a car as start and/or finish car.
func (r *Racetrack) Mark(carID string, m core.Marker) error { return r.engine.Mark(carID, m) }

// Drive starts an asynchronous run returning event & error channels.
func (r *Racetrack) Drive(
	ctx context.Context,
	carID string,
	p core.Policy,
) (string, <-chan core.StepEvent, <-chan error, error) {
	return r.engine.Drive(ctx, carID, p)
}

// DriveSync is a synchronous helper that drains the async channels, accumulates
// events and returns the runID.
func (r *Racetrack) DriveSync(
	ctx context.Context,
	carID string,
	p core.Policy,
) (string, []core.StepEvent, error) {
	return r.engine.DriveSync(ctx, carID, p)
}

// DriveAll drives several cars in parallel, one policy per car ID.
func (r *Racetrack) DriveAll(ctx context.Context, policies map[string]core.Policy) (map[string]engine.RunResult, error) {
	return r.engine.DriveAll(ctx, policies)
}

// Stop cancels an active run.
func (r *Racetrack) Stop(runID string) error { return r.engine.Stop(runID) }

// Trajectory returns a snapshot of a run's trajectory.
func (r *Racetrack) Trajectory(runID string) (*core.Trajectory, error) {
	return r.engine.Trajectory(runID)
}

// Summarize evaluates a run's trajectory.
func (r *Racetrack) Summarize(runID string) (evaluation.Report, error) {
	t, err := r.engine.Trajectory(runID)
	if err != nil {
		return evaluation.Report{}, err
	}
	return evaluation.Default().Evaluate(t)
}

// ExportGeoJSON returns the run's trajectory as a GeoJSON FeatureCollection.
// The exported artifact is used when present; otherwise the trajectory is
// encoded on the fly (e.g. for a run that is still active).
func (r *Racetrack) ExportGeoJSON(runID string) ([]byte, error) {
	a, err := r.engine.Artifact(runID, trajectory.ArtifactName)
	if err == nil {
		return a.Data, nil
	}
	if !errors.Is(err, artifact.ErrNotFound) {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	t, err := r.engine.Trajectory(runID)
	if err != nil {
		return nil, err
	}
	return trajectory.MarshalGeoJSON(t)
}

func (r *Racetrack) carLogger(carID string) logging.Logger {
	if rl, ok := r.opts.Logger.(*logging.RacetrackLogger); ok {
		return rl.WithComponent("car").WithCar(carID)
	}
	return r.opts.Logger
}
