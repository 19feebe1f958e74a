package core_test

import (
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/stretchr/testify/assert"
)

func TestVec_Arithmetic(t *testing.T) {
	a := core.Vec{X: 2, Y: -3}
	b := core.Vec{X: -1, Y: 4}

	assert.Equal(t, core.Vec{X: 1, Y: 1}, a.Add(b))
	assert.Equal(t, core.Vec{X: 3, Y: -7}, a.Sub(b))
	assert.Equal(t, 5, a.Manhattan())
	assert.True(t, core.Vec{}.IsZero())
	assert.False(t, a.IsZero())
	assert.Equal(t, "(2, -3)", a.String())
}

func TestVec_Clamp(t *testing.T) {
	tests := []struct {
		name    string
		in      core.Vec
		want    core.Vec
		clamped bool
	}{
		{"inside", core.Vec{X: 3, Y: -5}, core.Vec{X: 3, Y: -5}, false},
		{"x above", core.Vec{X: 6, Y: 0}, core.Vec{X: 5, Y: 0}, true},
		{"y below", core.Vec{X: 0, Y: -8}, core.Vec{X: 0, Y: -5}, true},
		{"both", core.Vec{X: -9, Y: 9}, core.Vec{X: -5, Y: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := tt.in.Clamp(-5, 5)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clamped, clamped)
			assert.True(t, got.Within(-5, 5))
		})
	}
}
