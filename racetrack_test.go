package racetrack

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/racetrack/car"
	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/engine"
	"github.com/hupe1980/racetrack/internal/testutil"
	"github.com/hupe1980/racetrack/logging"
	"github.com/hupe1980/racetrack/policy"
	"github.com/hupe1980/racetrack/trajectory"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRacetrack_DriveSyncAndSummarize(t *testing.T) {
	track := New()
	c := track.NewCar(func(o *car.Options) {
		o.ID = "red"
		o.Dice = testutil.NeverFail()
	})

	got, ok := track.Engine().GetCar("red")
	require.True(t, ok)
	assert.Same(t, c, got)

	require.NoError(t, track.Mark("red", core.Marker{Start: true}))

	runID, events, err := track.DriveSync(context.Background(), "red", policy.Repeat(core.NewCommand(1, 0), 3))
	require.NoError(t, err)
	require.Len(t, events, 3)

	report, err := track.Summarize(runID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Ticks)
	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, core.Vec{X: 9}, report.Position)
	assert.Equal(t, 1, report.Clamped)

	tr, err := track.Trajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, "true", tr.Metadata["marker_start"])

	data, err := track.ExportGeoJSON(runID)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)
}

func TestRacetrack_ExportWithoutArtifact(t *testing.T) {
	track := New(func(o *Options) {
		o.EngineConfig.ExportGeoJSON = false
	})
	track.NewCar(func(o *car.Options) {
		o.ID = "blue"
		o.Dice = testutil.NeverFail()
	})

	runID, _, err := track.DriveSync(context.Background(), "blue", policy.NewScripted(core.NewCommand(0, 1)))
	require.NoError(t, err)

	data, err := track.ExportGeoJSON(runID)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")

	_, err = track.ExportGeoJSON("unknown")
	assert.ErrorIs(t, err, trajectory.ErrNotFound)

	_, err = track.Summarize("unknown")
	assert.ErrorIs(t, err, trajectory.ErrNotFound)
}

func TestRacetrack_DriveAll(t *testing.T) {
	track := New(func(o *Options) {
		o.EngineConfig = engine.Config{MaxConcurrentRuns: 2, EventBufferSize: 8, Ticks: 20, ExportGeoJSON: true}
	})

	policies := map[string]core.Policy{}
	for i, id := range []string{"a", "b", "c"} {
		track.NewCar(func(o *car.Options) {
			o.ID = id
			o.Dice = car.NewDice(uint64(i))
		})
		policies[id] = policy.NewRandom(car.NewDice(uint64(100 + i)))
	}

	results, err := track.DriveAll(context.Background(), policies)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for id, res := range results {
		assert.Len(t, res.Events, 20, id)
		for _, ev := range res.Events {
			assert.True(t, ev.Velocity.Within(-car.MaxSpeed, car.MaxSpeed))
		}
	}
}

func TestRacetrack_DriveAndStop(t *testing.T) {
	track := New()
	track.NewCar(func(o *car.Options) { o.ID = "green" })

	started := make(chan struct{})
	p := core.PolicyFunc(func(ctx context.Context, _ core.Observation) (core.Command, error) {
		close(started)
		<-ctx.Done()
		return core.Command{}, ctx.Err()
	})

	runID, eventsCh, errorsCh, err := track.Drive(context.Background(), "green", p)
	require.NoError(t, err)
	<-started

	require.NoError(t, track.Stop(runID))
	_, runErr := engine.Collect(context.Background(), eventsCh, errorsCh)
	assert.ErrorIs(t, runErr, context.Canceled)
}

func TestRacetrack_CarsInheritLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := logging.DefaultLoggerConfig()
	cfg.Output = buf

	track := New(func(o *Options) { o.Logger = logging.NewLogger(cfg) })
	c := track.NewCar(func(o *car.Options) {
		o.ID = "logged"
		o.Dice = testutil.AlwaysFail()
	})

	_, err := c.Step(1, 0)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "component=car")
	assert.Contains(t, out, "car_id=logged")
	assert.Contains(t, out, "FAILURE")
}

func TestRacetrack_Collides(t *testing.T) {
	track := New(func(o *Options) {
		o.Collides = func(_ string, pos core.Vec) bool { return pos.X >= 1 }
	})
	c := track.NewCar(func(o *car.Options) {
		o.ID = "wall"
		o.Dice = testutil.NeverFail()
	})

	_, _, err := track.DriveSync(context.Background(), "wall", policy.NewScripted(core.NewCommand(1, 0)))
	require.NoError(t, err)

	assert.Equal(t, core.Vec{}, c.Velocity())
	assert.Equal(t, core.Vec{X: 1}, c.Position())
}
