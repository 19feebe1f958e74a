package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/racetrack/artifact"
	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/logging"
	"github.com/hupe1980/racetrack/marker"
	"github.com/hupe1980/racetrack/trajectory"
)

// ErrRunNotFound is returned by Cancel for unknown or finished runs.
var ErrRunNotFound = errors.New("run not found")

// Metadata keys written to a trajectory when a run finishes.
const (
	MetaTicks        = "ticks"
	MetaCollisions   = "collisions"
	MetaMarkerStart  = "marker_start"
	MetaMarkerFinish = "marker_finish"
	MetaStopReason   = "stop_reason"
)

// Stop reasons recorded under MetaStopReason.
const (
	StopTickLimit = "tick_limit"
	StopExhausted = "policy_exhausted"
	StopError     = "error"
	StopCancelled = "cancelled"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Ticks is the maximum number of steps per run.
	Ticks int
	// EventBufferSize sets channel buffering for step events.
	EventBufferSize int
	// ExportGeoJSON saves the finished trajectory as a GeoJSON artifact.
	ExportGeoJSON bool
	// Collides is consulted with the position after every step; returning
	// true stops the car by resetting its velocity.
	Collides func(pos core.Vec) bool
	// Trajectory persistence.
	TrajectoryStore core.TrajectoryStore
	// Exported documents.
	ArtifactStore core.ArtifactStore
	// Start/finish tags, recorded into trajectory metadata.
	MarkerStore core.MarkerStore
	// Logging services.
	Logger logging.Logger
}

// Runner drives one car with one policy. Each call to Run starts an
// independent asynchronous run; since a car is not safe for concurrent use,
// callers must not overlap runs of the same Runner (the engine enforces this).
// Run and Cancel themselves are safe for concurrent use.
type Runner struct {
	car    *car.Car
	policy core.Policy

	ticks           int
	eventBufferSize int
	exportGeoJSON   bool
	collides        func(core.Vec) bool

	trajectoryStore core.TrajectoryStore
	artifactStore   core.ArtifactStore
	markerStore     core.MarkerStore
	logger          logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(c *car.Car, p core.Policy, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Ticks:           100,
		EventBufferSize: 100,
		ExportGeoJSON:   true,
		TrajectoryStore: trajectory.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		MarkerStore:     marker.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		car:             c,
		policy:          p,
		ticks:           opts.Ticks,
		eventBufferSize: opts.EventBufferSize,
		exportGeoJSON:   opts.ExportGeoJSON,
		collides:        opts.Collides,
		trajectoryStore: opts.TrajectoryStore,
		artifactStore:   opts.ArtifactStore,
		markerStore:     opts.MarkerStore,
		logger:          logging.OrNoOp(opts.Logger),
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Car returns the car driven by this runner.
func (r *Runner) Car() *car.Car { return r.car }

// Run starts an asynchronous run. Step events are delivered in tick order on
// the first channel; a terminal error, if any, on the second. Both channels
// are closed when the run ends. Rejected and dropped commands never end a run;
// core.ErrPolicyExhausted ends it normally.
func (r *Runner) Run(ctx context.Context) (string, <-chan core.StepEvent, <-chan error, error) {
	runID := core.NewID()

	if _, err := r.trajectoryStore.Create(runID, r.car.ID()); err != nil {
		return "", nil, nil, fmt.Errorf("failed to create trajectory: %w", err)
	}

	eventsCh := make(chan core.StepEvent, r.eventBufferSize)
	errorsCh := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			close(eventsCh)
			close(errorsCh)
		}()

		if err := r.drive(ctx, runID, eventsCh); err != nil {
			errorsCh <- err
		}
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[runID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	cancel()

	return nil
}

type stepLogger interface {
	LogStep(tick int, outcome string, clamped bool, velocity, position string)
	LogRun(ticks int, dur time.Duration, success bool, err error)
}

func (r *Runner) runLogger(runID string) logging.Logger {
	if rl, ok := r.logger.(*logging.RacetrackLogger); ok {
		return rl.WithComponent("runner").WithCar(r.car.ID()).WithRun(runID)
	}
	return r.logger
}

func (r *Runner) drive(ctx context.Context, runID string, out chan<- core.StepEvent) error {
	logger := r.runLogger(runID)
	sl, structured := logger.(stepLogger)
	start := time.Now()

	var (
		steps      int
		collisions int
		reason     = StopTickLimit
		runErr     error
	)

	for steps < r.ticks {
		if err := ctx.Err(); err != nil {
			reason, runErr = StopCancelled, fmt.Errorf("run %s cancelled: %w", runID, err)
			break
		}

		cmd, err := r.policy.Next(ctx, r.car.Observe())
		if errors.Is(err, core.ErrPolicyExhausted) {
			reason = StopExhausted
			break
		}
		if err != nil {
			reason = StopError
			if ctx.Err() != nil {
				reason = StopCancelled
			}
			runErr = fmt.Errorf("policy failed at tick %d: %w", r.car.Tick(), err)
			break
		}

		ev, stepErr := r.car.Step(cmd.DX, cmd.DY)
		ev.RunID = runID
		if stepErr != nil {
			logger.Debug("runner continues after rejected command at tick %d: %v", ev.Tick, stepErr)
		}

		if r.collides != nil && r.collides(ev.Position) {
			r.car.ResetVelocity()
			collisions++
			logger.Info("collision at %s on tick %d, velocity reset", ev.Position, ev.Tick)
		}

		if err := r.trajectoryStore.AppendEvent(runID, ev); err != nil {
			reason, runErr = StopError, fmt.Errorf("failed to append step event: %w", err)
			break
		}
		// a stored step counts even if delivery is cut short by cancellation
		steps++

		if structured {
			sl.LogStep(ev.Tick, string(ev.Outcome), ev.Clamped, ev.Velocity.String(), ev.Position.String())
		}

		select {
		case <-ctx.Done():
			reason, runErr = StopCancelled, fmt.Errorf("run %s cancelled: %w", runID, ctx.Err())
		case out <- ev:
			logger.Debug("runner delivered event event_id=%s run_id=%s", ev.ID, runID)
		}
		if runErr != nil {
			break
		}
	}

	if err := r.finish(runID, steps, collisions, reason); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			logger.Warn("failed to finalize run %s: %v", runID, err)
		}
	}

	if structured {
		sl.LogRun(steps, time.Since(start), runErr == nil, runErr)
	}

	return runErr
}

// finish records run metadata (including the car's markers) and exports the
// trajectory.
func (r *Runner) finish(runID string, steps, collisions int, reason string) error {
	m, err := r.markerStore.Get(r.car.ID())
	if err != nil {
		return fmt.Errorf("failed to read markers: %w", err)
	}

	md := map[string]string{
		MetaTicks:        strconv.Itoa(steps),
		MetaCollisions:   strconv.Itoa(collisions),
		MetaMarkerStart:  strconv.FormatBool(m.Start),
		MetaMarkerFinish: strconv.FormatBool(m.Finish),
		MetaStopReason:   reason,
	}
	if err := r.trajectoryStore.SetMetadata(runID, md); err != nil {
		return fmt.Errorf("failed to set trajectory metadata: %w", err)
	}

	if !r.exportGeoJSON || r.artifactStore == nil {
		return nil
	}

	t, err := r.trajectoryStore.Get(runID)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	data, err := trajectory.MarshalGeoJSON(t)
	if err != nil {
		return fmt.Errorf("failed to encode trajectory: %w", err)
	}

	if err := r.artifactStore.Save(runID, core.Artifact{
		Name:        trajectory.ArtifactName,
		ContentType: trajectory.ContentType,
		Data:        data,
	}); err != nil {
		return fmt.Errorf("failed to save trajectory artifact: %w", err)
	}

	return nil
}
