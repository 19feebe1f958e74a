package util

import (
	"encoding/json"
	"testing"

	"github.com/hupe1980/racetrack/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaArgs struct {
	DX    int      `json:"dx" description:"x change" enum:"-1,0,1"`
	DY    int      `json:"dy" enum:"-1,0,1"`
	Note  string   `json:"note,omitempty"`
	Boost *float64 `json:"boost"`
	skip  int
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(schemaArgs{})

	assert.Equal(t, "object", schema["type"])
	props := schema["properties"].(map[string]any)
	require.Len(t, props, 4)

	dx := props["dx"].(map[string]any)
	assert.Equal(t, "integer", dx["type"])
	assert.Equal(t, "x change", dx["description"])
	assert.Equal(t, []any{-1, 0, 1}, dx["enum"])

	assert.Equal(t, "number", props["boost"].(map[string]any)["type"])
	assert.Equal(t, []string{"dx", "dy"}, schema["required"])

	assert.Equal(t, CreateSchema(schemaArgs{}), CreateSchema(&schemaArgs{}))
	assert.Empty(t, CreateSchema(42)["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(schemaArgs{})

	assert.NoError(t, ValidateParameters(map[string]any{"dx": float64(1), "dy": float64(-1)}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"dx": 0, "dy": 0, "extra": true}, schema))

	err := ValidateParameters(map[string]any{"dx": float64(1)}, schema)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dy", verr.Field)

	err = ValidateParameters(map[string]any{"dx": "left", "dy": float64(0)}, schema)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dx", verr.Field)
	assert.ErrorIs(t, err, core.ErrInvalidCommand)

	err = ValidateParameters(map[string]any{"dx": 0.5, "dy": float64(0)}, schema)
	assert.Error(t, err)
}

func TestValidateParameters_AfterJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(CreateSchema(schemaArgs{}))
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Error(t, ValidateParameters(map[string]any{"dy": float64(0)}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"dx": float64(0), "dy": float64(0)}, schema))
}
