package main

import (
	"context"
	"errors"

	"github.com/itchyny/gojq"

	"github.com/rendis/jsonrender/pkg/schema"
)

// runQuery evaluates a jq expression against data and collects every
// output.
func runQuery(ctx context.Context, expression string, data map[string]any) ([]any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty jq expression")
	}
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "invalid jq expression %q", expression).WithCause(err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "compile jq expression %q", expression).WithCause(err)
	}

	var results []any
	iter := code.RunWithContext(ctx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "jq evaluation failed for %q: %s", expression, err).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, v)
	}
	return results, nil
}
