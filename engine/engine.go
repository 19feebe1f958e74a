package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/racetrack/artifact"
	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/logging"
	"github.com/hupe1980/racetrack/marker"
	"github.com/hupe1980/racetrack/runner"
	"github.com/hupe1980/racetrack/trajectory"
)

var (
	// ErrCarNotFound is returned for car IDs that were never registered.
	ErrCarNotFound = errors.New("car not found")
	// ErrCarBusy is returned when a car is already being driven by another run.
	ErrCarBusy = errors.New("car is already being driven")
)

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    MaxConcurrentRuns: 50,
//	    EventBufferSize:   256,
//	    Ticks:             500,
//	    ExportGeoJSON:     true,
//	}
type Config struct {
	// MaxConcurrentRuns limits the number of runs that can execute
	// simultaneously. Drive blocks until a slot is free or ctx is done.
	// Set to 0 for unlimited.
	MaxConcurrentRuns int

	// EventBufferSize sets the channel buffer size for step events.
	EventBufferSize int

	// Ticks is the maximum number of steps per run.
	Ticks int

	// ExportGeoJSON saves each finished trajectory as a GeoJSON artifact.
	ExportGeoJSON bool
}

// DefaultConfig provides default configuration values:
//   - MaxConcurrentRuns: 10
//   - EventBufferSize: 100
//   - Ticks: 100
//   - ExportGeoJSON: true
var DefaultConfig = Config{
	MaxConcurrentRuns: 10,
	EventBufferSize:   100,
	Ticks:             100,
	ExportGeoJSON:     true,
}

// Options configures an Engine instance using the functional options pattern.
// All stores default to in-memory implementations.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// TrajectoryStore persists the step events of every run.
	TrajectoryStore core.TrajectoryStore

	// ArtifactStore receives exported trajectories.
	ArtifactStore core.ArtifactStore

	// MarkerStore holds start/finish tags per car.
	MarkerStore core.MarkerStore

	// Collides, if set, is consulted after every step of every run; true
	// resets the car's velocity.
	Collides func(carID string, pos core.Vec) bool

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Engine manages a registry of cars and drives them with policies.
//
// Concurrency Model:
//   - Thread-safe car registration and lookup via RWMutex
//   - A car is driven by at most one run at a time (ErrCarBusy)
//   - Bounded concurrent runs across all cars (MaxConcurrentRuns)
//   - Per-run goroutines with cancellation via Stop or the caller's context
//
// Example Usage:
//
//	eng := engine.New()
//	c := car.New(func(o *car.Options) { o.ID = "red" })
//	eng.Register(c)
//
//	runID, events, err := eng.DriveSync(ctx, "red", policy.NewRandom(car.NewDice(7)))
type Engine struct {
	trajectoryStore core.TrajectoryStore
	artifactStore   core.ArtifactStore
	markerStore     core.MarkerStore
	collides        func(string, core.Vec) bool
	logger          logging.Logger

	config Config
	slots  chan struct{}

	cars map[string]*car.Car
	busy map[string]string // car ID -> run ID
	mu   sync.RWMutex

	activeRuns map[string]*runner.Runner
	runsMu     sync.RWMutex
}

// New creates a new Engine instance with in-memory stores and DefaultConfig
// unless overridden.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:          DefaultConfig,
		TrajectoryStore: trajectory.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		MarkerStore:     marker.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var slots chan struct{}
	if opts.Config.MaxConcurrentRuns > 0 {
		slots = make(chan struct{}, opts.Config.MaxConcurrentRuns)
	}

	return &Engine{
		trajectoryStore: opts.TrajectoryStore,
		artifactStore:   opts.ArtifactStore,
		markerStore:     opts.MarkerStore,
		collides:        opts.Collides,
		logger:          logging.OrNoOp(opts.Logger),
		config:          opts.Config,
		slots:           slots,
		cars:            make(map[string]*car.Car),
		busy:            make(map[string]string),
		activeRuns:      make(map[string]*runner.Runner),
	}
}

// Register adds a car to the registry under its ID, replacing any car with
// the same ID.
func (e *Engine) Register(c *car.Car) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cars[c.ID()] = c
}

// GetCar retrieves a registered car by ID.
func (e *Engine) GetCar(id string) (*car.Car, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.cars[id]
	return c, ok
}

// Cars returns the registered car IDs in sorted order.
func (e *Engine) Cars() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.cars))
	for id := range e.cars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mark stores start/finish tags for a registered car.
func (e *Engine) Mark(carID string, m core.Marker) error {
	if _, ok := e.GetCar(carID); !ok {
		return fmt.Errorf("%w: %s", ErrCarNotFound, carID)
	}
	return e.markerStore.Put(carID, m)
}

// Marker returns the tags of a car; unmarked cars yield the zero Marker.
func (e *Engine) Marker(carID string) (core.Marker, error) {
	return e.markerStore.Get(carID)
}

// Drive starts an asynchronous run of the car with the given policy and
// returns its run ID with channels for step events and the terminal error.
//
// Errors returned directly: ErrCarNotFound, ErrCarBusy, or the context error
// when no run slot became free. Policy failures and cancellation arrive on
// the error channel; rejected or dropped commands never do.
func (e *Engine) Drive(
	ctx context.Context,
	carID string,
	p core.Policy,
) (string, <-chan core.StepEvent, <-chan error, error) {
	c, ok := e.GetCar(carID)
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: %s", ErrCarNotFound, carID)
	}

	if err := e.claim(carID); err != nil {
		return "", nil, nil, err
	}

	if err := e.acquire(ctx); err != nil {
		e.unclaim(carID)
		return "", nil, nil, fmt.Errorf("waiting for a run slot: %w", err)
	}

	r := runner.New(c, p, func(o *runner.Options) {
		o.Ticks = e.config.Ticks
		o.EventBufferSize = e.config.EventBufferSize
		o.ExportGeoJSON = e.config.ExportGeoJSON
		o.TrajectoryStore = e.trajectoryStore
		o.ArtifactStore = e.artifactStore
		o.MarkerStore = e.markerStore
		o.Logger = e.logger
		if e.collides != nil {
			o.Collides = func(pos core.Vec) bool { return e.collides(carID, pos) }
		}
	})

	runID, innerEvents, innerErrors, err := r.Run(ctx)
	if err != nil {
		e.release()
		e.unclaim(carID)
		return "", nil, nil, err
	}

	e.mu.Lock()
	e.busy[carID] = runID
	e.mu.Unlock()

	e.runsMu.Lock()
	e.activeRuns[runID] = r
	e.runsMu.Unlock()

	eventsCh := make(chan core.StepEvent, e.config.EventBufferSize)
	errorsCh := make(chan error, 1)

	go func() {
		defer func() {
			e.runsMu.Lock()
			delete(e.activeRuns, runID)
			e.runsMu.Unlock()
			e.release()
			e.unclaim(carID)
			close(eventsCh)
			close(errorsCh)
		}()

		for ev := range innerEvents {
			select {
			case eventsCh <- ev:
			case <-ctx.Done():
				// Keep draining so the runner can finish and persist.
			}
		}
		for err := range innerErrors {
			errorsCh <- err
		}
	}()

	e.logger.Debug("engine started run run_id=%s car_id=%s", runID, carID)

	return runID, eventsCh, errorsCh, nil
}

// DriveSync drives a car to completion and returns all step events.
//
// If ctx is cancelled the events collected so far are returned with ctx.Err().
func (e *Engine) DriveSync(
	ctx context.Context,
	carID string,
	p core.Policy,
) (string, []core.StepEvent, error) {
	runID, eventsCh, errorsCh, err := e.Drive(ctx, carID, p)
	if err != nil {
		return "", nil, err
	}

	events, err := Collect(ctx, eventsCh, errorsCh)
	return runID, events, err
}

// Collect drains a run's channels, returning the events in tick order and the
// terminal error, if any.
func Collect(ctx context.Context, eventsCh <-chan core.StepEvent, errorsCh <-chan error) ([]core.StepEvent, error) {
	var events []core.StepEvent
	for {
		select {
		case <-ctx.Done():
			return events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				if err, ok := <-errorsCh; ok && err != nil {
					return events, err
				}
				return events, nil
			}
			events = append(events, event)
		}
	}
}

// RunResult is the outcome of one car's run within DriveAll.
type RunResult struct {
	CarID  string
	RunID  string
	Events []core.StepEvent
	Err    error
}

// DriveAll drives several independent cars in parallel, one policy per car
// ID, and waits for all of them. The returned error joins every per-car error.
func (e *Engine) DriveAll(ctx context.Context, policies map[string]core.Policy) (map[string]RunResult, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]RunResult, len(policies))
	)

	for carID, p := range policies {
		wg.Add(1)
		go func(carID string, p core.Policy) {
			defer wg.Done()

			runID, events, err := e.DriveSync(ctx, carID, p)
			if err != nil {
				err = fmt.Errorf("car %s: %w", carID, err)
			}

			mu.Lock()
			results[carID] = RunResult{CarID: carID, RunID: runID, Events: events, Err: err}
			mu.Unlock()
		}(carID, p)
	}

	wg.Wait()

	var errs []error
	for _, id := range sortedKeys(results) {
		if results[id].Err != nil {
			errs = append(errs, results[id].Err)
		}
	}

	return results, errors.Join(errs...)
}

// Stop cancels an active run by ID. Stopping a run that is just finishing
// succeeds; an unknown run ID yields runner.ErrRunNotFound.
func (e *Engine) Stop(runID string) error {
	e.runsMu.RLock()
	r, exists := e.activeRuns[runID]
	e.runsMu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", runner.ErrRunNotFound, runID)
	}

	// The runner forgets a run slightly before the engine does; a run that
	// finished in between needs no cancellation.
	if err := r.Cancel(runID); err != nil && !errors.Is(err, runner.ErrRunNotFound) {
		return err
	}

	return nil
}

// ActiveRuns returns the IDs of runs that have not finished yet.
func (e *Engine) ActiveRuns() []string {
	e.runsMu.RLock()
	defer e.runsMu.RUnlock()
	ids := make([]string, 0, len(e.activeRuns))
	for id := range e.activeRuns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Trajectory returns a snapshot of a run's trajectory.
func (e *Engine) Trajectory(runID string) (*core.Trajectory, error) {
	return e.trajectoryStore.Get(runID)
}

// Artifact returns a document exported by a run.
func (e *Engine) Artifact(runID, name string) (core.Artifact, error) {
	return e.artifactStore.Get(runID, name)
}

func (e *Engine) claim(carID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if runID, busy := e.busy[carID]; busy {
		return fmt.Errorf("%w: %s (run %s)", ErrCarBusy, carID, runID)
	}
	e.busy[carID] = ""
	return nil
}

func (e *Engine) unclaim(carID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.busy, carID)
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.slots == nil {
		return nil
	}
	select {
	case e.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	if e.slots == nil {
		return
	}
	<-e.slots
}

func sortedKeys(m map[string]RunResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
