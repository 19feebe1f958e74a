package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	state := map[string]any{"tick": 3, "position_x": -2, "position_y": 7, "car_id": "red"}

	out, err := RenderTemplate("Car {{upper .car_id}} at {{vec .position_x .position_y}} on tick {{.tick}}", state)
	require.NoError(t, err)
	assert.Equal(t, "Car RED at (-2, 7) on tick 3", out)

	out, err = RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate(`{{default "anon" .car_id}}`, map[string]any{"car_id": ""})
	require.NoError(t, err)
	assert.Equal(t, "anon", out)
}

func TestRenderTemplate_Errors(t *testing.T) {
	_, err := RenderTemplate("{{.missing}}", map[string]any{})
	assert.Error(t, err)

	_, err = RenderTemplate("{{.tick", map[string]any{"tick": 1})
	assert.ErrorContains(t, err, "parse template")
}
