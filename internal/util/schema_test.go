package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingArgs struct {
	Request  string `json:"request" description:"The booking request text."`
	Priority int    `json:"priority,omitempty"`
	Internal string `json:"-"`
	hidden   bool
}

func TestCreateSchema_FromStruct(t *testing.T) {
	schema := CreateSchema(bookingArgs{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "request")
	require.Contains(t, props, "priority")
	assert.NotContains(t, props, "Internal")
	assert.NotContains(t, props, "hidden")

	request, ok := props["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", request["type"])
	assert.Equal(t, "The booking request text.", request["description"])

	assert.Equal(t, []string{"request"}, schema["required"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")

	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParameters_RequiredMissing(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"request": map[string]any{"type": "string"}},
		"required":   []string{"request"},
	}

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "request", verr.Field)
	assert.Contains(t, verr.Error(), "required field is missing")
}

func TestValidateParameters_RequiredAsAnySlice(t *testing.T) {
	// JSON decoded schemas carry required as []any.
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"request": map[string]any{"type": "string"}},
		"required":   []any{"request"},
	}

	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"request": "hi"}, schema))
}

func TestValidateParameters_TypeMismatch(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"request": map[string]any{"type": "string"}},
	}

	err := ValidateParameters(map[string]any{"request": 42}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected type string")
}

func TestValidateParameters_JSONNumbersAsIntegers(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"count": map[string]any{"type": "integer"}},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"count": float64(3)}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"count": 3.5}, schema))
}

func TestValidateParameters_UnknownFieldsAllowed(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"request": map[string]any{"type": "string"}},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"request": "hi", "extra": true}, schema))
}
