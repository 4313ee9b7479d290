package main

import (
	"bytes"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/pkg/schema"
)

// readDocument reads a JSON or YAML file and re-encodes it as JSON so the
// schema types decode both the same way.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "read %s", path).WithCause(err)
	}
	if catalog.FormatFromPath(path) == catalog.FormatJSON {
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "decode YAML %s", path).WithCause(err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "convert %s to JSON", path).WithCause(err)
	}
	return out, nil
}

func loadTree(path string) (*schema.ElementTree, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	var tree schema.ElementTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "decode tree %s", path).WithCause(err)
	}
	return &tree, nil
}

// loadData decodes a data document. An empty path is an empty store.
func loadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "decode data %s", path).WithCause(err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
