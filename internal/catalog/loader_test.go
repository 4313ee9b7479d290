package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/jsonrender/pkg/schema"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("catalog.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("dir/catalog.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("catalog.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("catalog"))
}

func TestLoad_YAML(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dashboard", c.Name())
	assert.Equal(t, ValidationWarn, c.Mode())
	assert.Equal(t, []string{"Button", "Card"}, c.ComponentNames())
	assert.True(t, c.HasAction("refresh"))
	assert.True(t, c.HasFunction("formatCurrency"))

	r := c.ValidateElement(&schema.UIElement{Key: "c", Type: "Card", Props: map[string]any{"title": 1}})
	assert.False(t, r.Success())

	r = c.ValidateElement(&schema.UIElement{
		Key:   "b",
		Type:  "Button",
		Props: map[string]any{"label": "Reload", "action": map[string]any{"name": "refresh"}},
	})
	assert.True(t, r.Success(), "%v", r.Errors)
}

func TestLoad_JSON(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)

	assert.Equal(t, ValidationStrict, c.Mode())
	assert.True(t, c.ValidateAction(schema.SimpleAction("save", map[string]any{"id": 3})).Success())
	assert.False(t, c.ValidateAction(schema.SimpleAction("save", map[string]any{"id": 3.5})).Success())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeNotFound, engErr.Code)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"components": {}, "theme": "dark"}`), FormatJSON)
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeDecode, engErr.Code)

	_, err = Parse([]byte("components: {}\ntheme: dark\n"), FormatYAML)
	require.Error(t, err)
}

func TestParse_InvalidMode(t *testing.T) {
	_, err := Parse([]byte(`{"components": {}, "validation": "loose"}`), FormatJSON)
	require.Error(t, err)
}

func TestParse_UnknownComponentField(t *testing.T) {
	_, err := Parse([]byte(`{"components": {"Text": {"children": true}}}`), FormatJSON)
	require.Error(t, err)
}
