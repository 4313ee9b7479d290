package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"

	"github.com/rendis/jsonrender/pkg/schema"
)

// RegisterBuiltins registers the host-independent handlers used by the CLI
// and by tests: log, fail, assert.equals and assert.matches.
func RegisterBuiltins(reg *Registry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	builtins := []struct {
		name    string
		desc    string
		handler Handler
	}{
		{"log", "Log the resolved params", logHandler(logger)},
		{"fail", "Always fail with params.message", failHandler},
	}

	for _, b := range builtins {
		if err := reg.Register(b.name, b.handler, b.desc); err != nil {
			return err
		}
	}

	_, err := reg.RegisterPlugin("assert", map[string]PluginHandler{
		"equals":  {Handler: assertEqualsHandler, Description: "Fail unless params.expected deeply equals params.actual"},
		"matches": {Handler: assertMatchesHandler, Description: "Fail unless params.value matches the params.pattern regex"},
	})
	return err
}

func logHandler(logger *slog.Logger) Handler {
	return func(ctx context.Context, params map[string]any) error {
		logger.InfoContext(ctx, "action log", slog.Any("params", params))
		return nil
	}
}

func failHandler(_ context.Context, params map[string]any) error {
	msg := "action failed"
	if m, ok := params["message"].(string); ok && m != "" {
		msg = m
	}
	return schema.NewError(schema.ErrCodeActionFailed, msg)
}

func assertEqualsHandler(_ context.Context, params map[string]any) error {
	if _, ok := params["expected"]; !ok {
		return schema.NewError(schema.ErrCodeValidation, "assert.equals requires 'expected' parameter")
	}
	expected := normalizeJSON(params["expected"])
	actual := normalizeJSON(params["actual"])
	if reflect.DeepEqual(expected, actual) {
		return nil
	}

	msg := "assertion failed: values are not equal"
	if m, ok := params["message"].(string); ok && m != "" {
		msg = m
	}
	return schema.NewError(schema.ErrCodeActionFailed, msg).
		WithDetails(map[string]any{"expected": params["expected"], "actual": params["actual"]})
}

func assertMatchesHandler(_ context.Context, params map[string]any) error {
	value := fmt.Sprint(params["value"])
	pattern, ok := params["pattern"].(string)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, "assert.matches requires 'pattern' string parameter")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeValidation, "invalid regex pattern: %s", err)
	}
	if re.MatchString(value) {
		return nil
	}

	msg := "assertion failed: value does not match pattern"
	if m, ok := params["message"].(string); ok && m != "" {
		msg = m
	}
	return schema.NewError(schema.ErrCodeActionFailed, msg).
		WithDetails(map[string]any{"value": value, "pattern": pattern})
}

// normalizeJSON converts Go numeric types to float64 for consistent deep-equal comparison.
// Values read from decoded documents are float64 while literals built in Go
// are often int.
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeJSON(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeJSON(item)
		}
		return out
	default:
		return v
	}
}
