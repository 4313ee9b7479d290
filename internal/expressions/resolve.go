package expressions

import (
	"github.com/rendis/jsonrender/pkg/schema"
)

// Source looks up store paths. *datastore.Store and datastore.Data satisfy it.
type Source interface {
	Get(path string) (any, bool)
}

// ResolveDynamicValue returns the literal, or the value found at the
// referenced path. Absent values and missing paths resolve to nil.
func ResolveDynamicValue(value schema.DynamicValue, src Source) any {
	if value.IsZero() {
		return nil
	}
	if !value.IsPathRef() {
		return value.Value()
	}
	if src == nil {
		return nil
	}
	v, ok := src.Get(value.Path())
	if !ok {
		return nil
	}
	return v
}

// ResolveRaw classifies a decoded JSON value and resolves it.
func ResolveRaw(raw any, src Source) any {
	return ResolveDynamicValue(schema.ParseDynamicValue(raw), src)
}

// ResolveProps resolves every property independently. The result has the
// same keys as props.
func ResolveProps(props map[string]any, src Source) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = ResolveRaw(v, src)
	}
	return out
}

// ResolveParams resolves action params. The result has the same keys as
// params and is never nil.
func ResolveParams(params map[string]schema.DynamicValue, src Source) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = ResolveDynamicValue(v, src)
	}
	return out
}
