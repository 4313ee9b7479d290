package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rendis/jsonrender/pkg/schema"
)

// Format identifies a catalog document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything other
// than .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and compiles a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "read catalog %s", path).WithCause(err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes and compiles a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	def, err := DecodeDefinition(data, format)
	if err != nil {
		return nil, err
	}
	return New(def)
}

// DecodeDefinition decodes a catalog document without compiling it.
// Unknown fields are rejected.
func DecodeDefinition(data []byte, format Format) (Definition, error) {
	var def Definition
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return Definition{}, schema.NewError(schema.ErrCodeDecode, "decode YAML catalog").WithCause(err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return Definition{}, schema.NewError(schema.ErrCodeDecode, "decode JSON catalog").WithCause(err)
		}
	}
	return def, nil
}
