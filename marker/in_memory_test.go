package marker

import (
	"sync"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var _ core.MarkerStore = (*InMemoryStore)(nil)

func TestInMemoryStore_PutGet(t *testing.T) {
	s := NewInMemoryStore()

	m, err := s.Get("unmarked")
	require.NoError(t, err)
	assert.Equal(t, core.Marker{}, m)
	assert.False(t, s.IsStart("unmarked"))

	require.NoError(t, s.Put("a", core.Marker{Start: true}))
	require.NoError(t, s.Put("b", core.Marker{Finish: true}))

	assert.True(t, s.IsStart("a"))
	assert.False(t, s.IsFinish("a"))
	assert.True(t, s.IsFinish("b"))

	require.NoError(t, s.Put("a", core.Marker{Start: true, Finish: true}))
	assert.True(t, s.IsFinish("a"))
}

func TestInMemoryStore_ListDelete(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Put("a", core.Marker{Start: true}))
	require.NoError(t, s.Put("b", core.Marker{Finish: true}))

	all, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, map[string]core.Marker{"a": {Start: true}, "b": {Finish: true}}, all)

	all["c"] = core.Marker{Start: true}
	again, err := s.List()
	require.NoError(t, err)
	assert.Len(t, again, 2)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"))
	assert.False(t, s.IsStart("a"))
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	s := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i%20))
			_ = s.Put(id, core.Marker{Start: i%2 == 0})
			_, _ = s.Get(id)
		}()
	}
	wg.Wait()

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
