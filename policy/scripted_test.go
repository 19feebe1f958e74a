package policy

import (
	"context"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/hupe1980/racetrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScripted(t *testing.T) {
	ctx := context.Background()
	cmds := []core.Command{core.NewCommand(1, 0), core.NewCommand(0, -1)}
	p := NewScripted(cmds...)
	cmds[0] = core.NewCommand(-1, -1) // caller mutation must not leak in

	got, err := p.Next(ctx, core.Observation{})
	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(1, 0), got)
	assert.Equal(t, 1, p.Remaining())

	got, err = p.Next(ctx, core.Observation{})
	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(0, -1), got)

	_, err = p.Next(ctx, core.Observation{})
	assert.ErrorIs(t, err, core.ErrPolicyExhausted)
	assert.Zero(t, p.Remaining())
}

func TestRepeat(t *testing.T) {
	p := Repeat(core.NewCommand(1, 1), 3)
	for range 3 {
		cmd, err := p.Next(context.Background(), core.Observation{})
		require.NoError(t, err)
		assert.Equal(t, core.NewCommand(1, 1), cmd)
	}
	_, err := p.Next(context.Background(), core.Observation{})
	assert.ErrorIs(t, err, core.ErrPolicyExhausted)
}

func TestScripted_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScripted(core.NewCommand(0, 0)).Next(ctx, core.Observation{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoop(t *testing.T) {
	ctx := context.Background()
	p := NewLoop([]core.Command{core.NewCommand(1, 0), core.NewCommand(-1, 0)}, 2)

	var got []core.Command
	for {
		cmd, err := p.Next(ctx, core.Observation{})
		if err != nil {
			assert.ErrorIs(t, err, core.ErrPolicyExhausted)
			break
		}
		got = append(got, cmd)
	}

	assert.Equal(t, []core.Command{
		core.NewCommand(1, 0), core.NewCommand(-1, 0),
		core.NewCommand(1, 0), core.NewCommand(-1, 0),
	}, got)
	assert.Equal(t, 2, p.Iterations())

	forever := NewLoop([]core.Command{core.NewCommand(0, 1)}, 0)
	for range 100 {
		_, err := forever.Next(ctx, core.Observation{})
		require.NoError(t, err)
	}

	_, err := NewLoop(nil, 0).Next(ctx, core.Observation{})
	assert.ErrorIs(t, err, core.ErrPolicyExhausted)
}

func TestRandom(t *testing.T) {
	p := NewRandom(testutil.NewScriptedDice(0, 1, 2, 0))

	cmd, err := p.Next(context.Background(), core.Observation{})
	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(-1, 0), cmd)

	cmd, err = p.Next(context.Background(), core.Observation{})
	require.NoError(t, err)
	assert.Equal(t, core.NewCommand(1, -1), cmd)
}

func TestRandom_AlwaysValid(t *testing.T) {
	p := NewRandom(testutil.NewScriptedDice(0, 1, 2, 3, 4, 5, 6, 7))
	for range 50 {
		cmd, err := p.Next(context.Background(), core.Observation{})
		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
	}
}

func TestInstruction(t *testing.T) {
	obs := core.Observation{CarID: "red", Tick: 4, Position: core.Vec{X: 2, Y: -1}}

	static := NewInstructionFromText("Car {{.car_id}} at {{vec .position_x .position_y}}, limit {{.max_speed}}")
	assert.True(t, static.IsStatic())
	text, err := static.Resolve(obs)
	require.NoError(t, err)
	assert.Equal(t, "Car red at (2, -1), limit 5", text)

	dynamic := NewInstructionFromFunc(func(o core.Observation) (string, error) {
		return "tick " + string(rune('0'+o.Tick)), nil
	})
	assert.False(t, dynamic.IsStatic())
	text, err = dynamic.Resolve(obs)
	require.NoError(t, err)
	assert.Equal(t, "tick 4", text)
}
