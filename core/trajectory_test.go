package core_test

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrajectory_Positions(t *testing.T) {
	empty := core.NewTrajectory("run", "car")
	assert.Nil(t, empty.Positions())
	_, ok := empty.Last()
	assert.False(t, ok)

	tr := testutil.NewTrajectoryBuilder("run", "car").Applied(1, 0).Applied(1, 0).Build()

	assert.Equal(t, []core.Vec{{}, {X: 1}, {X: 4}}, tr.Positions())
	assert.Equal(t, 2, tr.Len())
	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Tick)
}

func TestTrajectory_CloneIsolation(t *testing.T) {
	tr := testutil.NewTrajectoryBuilder("run", "car").Applied(0, 1).Metadata("k", "v").Build()

	clone := tr.Clone()
	clone.AddEvent(core.NewStepEvent("car", core.NewCommand(0, 0)))
	clone.SetMetadata("k", "changed")

	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, "v", tr.Metadata["k"])
	assert.Equal(t, 2, clone.Len())

	events := tr.GetEvents()
	events[0].Tick = 99
	assert.Equal(t, 1, tr.GetEvents()[0].Tick)
}

func TestTrajectory_ConcurrentAppend(t *testing.T) {
	tr := core.NewTrajectory("run", "car")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddEvent(core.NewStepEvent("car", core.NewCommand(0, 0)))
			_ = tr.Positions()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Len())
}

func TestCallLimiter(t *testing.T) {
	l := core.NewCallLimiter(2)
	assert.Equal(t, 2, l.Remaining())

	require.NoError(t, l.Increment())
	require.NoError(t, l.Increment())
	assert.Equal(t, 0, l.Remaining())

	err := l.Increment()
	assert.ErrorIs(t, err, core.ErrCallLimitExceeded)
	assert.Equal(t, 3, l.Count())

	l.Reset()
	assert.Equal(t, 0, l.Count())
	assert.NoError(t, l.Increment())

	unlimited := core.NewCallLimiter(0)
	for range 100 {
		require.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}

func TestPolicyFunc(t *testing.T) {
	p := core.PolicyFunc(func(_ context.Context, obs core.Observation) (core.Command, error) {
		if obs.Tick >= 1 {
			return core.Command{}, core.ErrPolicyExhausted
		}
		return core.NewCommand(1, 1), nil
	})

	cmd, err := p.Next(context.Background(), core.Observation{})
	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(1, 1), cmd)

	_, err = p.Next(context.Background(), core.Observation{Tick: 1})
	assert.ErrorIs(t, err, core.ErrPolicyExhausted)
}
