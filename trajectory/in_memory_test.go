package trajectory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var _ core.TrajectoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_CreateGet(t *testing.T) {
	s := NewInMemoryStore()

	tr, err := s.Create("run-1", "car-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", tr.ID)
	assert.Equal(t, "car-1", tr.CarID)
	assert.Zero(t, tr.Len())

	got, err := s.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "car-1", got.CarID)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.AppendEvent("missing", core.StepEvent{}), ErrNotFound)
	assert.ErrorIs(t, s.SetMetadata("missing", map[string]string{"k": "v"}), ErrNotFound)
}

func TestInMemoryStore_AppendAndMetadata(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Create("run-1", "car-1")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		ev := core.NewStepEvent("car-1", core.NewCommand(1, 0))
		ev.Tick = i
		require.NoError(t, s.AppendEvent("run-1", ev))
	}
	require.NoError(t, s.SetMetadata("run-1", map[string]string{"a": "1"}))
	require.NoError(t, s.SetMetadata("run-1", map[string]string{"b": "2"}))

	tr, err := s.Get("run-1")
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())
	for i, ev := range tr.GetEvents() {
		assert.Equal(t, i+1, ev.Tick)
	}
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, tr.Metadata)
}

func TestInMemoryStore_Isolation(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Create("run-1", "car-1")
	require.NoError(t, err)

	tr, err := s.Get("run-1")
	require.NoError(t, err)
	tr.AddEvent(core.NewStepEvent("car-1", core.NewCommand(0, 0)))
	tr.Metadata["x"] = "y"

	again, err := s.Get("run-1")
	require.NoError(t, err)
	assert.Zero(t, again.Len())
	assert.Empty(t, again.Metadata)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	s := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := range 20 {
		runID := fmt.Sprintf("run-%d", i)
		_, err := s.Create(runID, "car")
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				_ = s.AppendEvent(runID, core.NewStepEvent("car", core.NewCommand(0, 0)))
				_, _ = s.Get(runID)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.IDs(), 20)
	for _, id := range s.IDs() {
		tr, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, 25, tr.Len())
	}
}
