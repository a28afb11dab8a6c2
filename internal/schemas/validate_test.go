package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stageSchema = `{
  "type": "object",
  "required": ["name", "stages"],
  "properties": {
    "name": {"type": "string"},
    "stages": {"type": "integer", "minimum": 1}
  }
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(stageSchema, `{"name": "technical", "stages": 9}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(stageSchema, `{"name": "technical"}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, validationErr.Error(), "validation failed")
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "(string schema)", loadErr.Path)
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     any
		wantErr bool
		field   string
	}{
		{"valid map", map[string]any{"name": "technical", "stages": 9}, false, ""},
		{"wrong type", map[string]any{"name": "technical", "stages": "nine"}, true, "stages"},
		{"below minimum", map[string]any{"name": "technical", "stages": 0}, true, "stages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument("stage.schema.json", stageSchema, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Errors[0].Field)
		})
	}
}
