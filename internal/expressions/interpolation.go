package expressions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	openMarker  = "${"
	closeMarker = "}"
)

// InterpolateString replaces every ${path} reference in template with the
// string form of the value at path. Missing values become the empty string.
// Unclosed markers and empty references (${}) are copied through unchanged.
func InterpolateString(template string, src Source) string {
	if !HasInterpolation(template) {
		return template
	}

	var result strings.Builder
	result.Grow(len(template))

	i := 0
	for i < len(template) {
		idx := strings.Index(template[i:], openMarker)
		if idx == -1 {
			result.WriteString(template[i:])
			break
		}

		// Write everything before the marker.
		result.WriteString(template[i : i+idx])
		start := i + idx + len(openMarker)

		end := strings.Index(template[start:], closeMarker)
		if end == -1 {
			result.WriteString(template[i+idx:])
			break
		}
		end += start

		path := template[start:end]
		if path == "" {
			result.WriteString(template[i+idx : end+1])
			i = end + 1
			continue
		}

		var val any
		if src != nil {
			val, _ = src.Get(path)
		}
		result.WriteString(Stringify(val))

		i = end + 1
	}

	return result.String()
}

// HasInterpolation checks if a string contains any ${...} reference.
func HasInterpolation(s string) bool {
	return strings.Contains(s, openMarker)
}

// Stringify converts a resolved value into its display form. nil becomes the
// empty string and composite values are JSON-encoded.
func Stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case json.RawMessage:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
