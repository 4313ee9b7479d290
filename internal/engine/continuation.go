package engine

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rendis/jsonrender/pkg/schema"
)

// Callbacks are the host capabilities a continuation may use. Any of them
// may be nil, in which case the matching continuation form is a no-op.
type Callbacks struct {
	// SetData receives a bare field name and a literal value.
	SetData func(key string, value any)
	// Navigate receives the target path.
	Navigate func(path string)
	// Dispatch runs another named action. Its error is returned by Execute.
	Dispatch func(ctx context.Context, name string) error
}

// ApplyContinuation runs c against cb. When cause is non-nil, the
// $error.message placeholder in string set values is replaced with the
// cause's message. A nil continuation is a no-op. A malformed continuation
// returns INVALID_CONTINUATION with cause attached, so an unhandled handler
// failure stays reachable through errors.Is.
func ApplyContinuation(ctx context.Context, c *schema.Continuation, cb Callbacks, cause error) (schema.ContinuationKind, error) {
	if c == nil {
		return "", nil
	}
	kind, err := c.Kind()
	if err != nil {
		var engErr *schema.EngineError
		if cause != nil && errors.As(err, &engErr) && engErr.Cause == nil {
			return "", engErr.WithCause(cause)
		}
		return "", err
	}

	switch kind {
	case schema.ContinuationNavigate:
		if cb.Navigate != nil {
			cb.Navigate(c.Navigate)
		}
	case schema.ContinuationSet:
		if cb.SetData == nil {
			return kind, nil
		}
		keys := make([]string, 0, len(c.Set))
		for k := range c.Set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := c.Set[k]
			if cause != nil {
				v = substituteError(v, schema.MessageOf(cause))
			}
			cb.SetData(k, v)
		}
	case schema.ContinuationAction:
		if cb.Dispatch != nil {
			return kind, cb.Dispatch(ctx, c.Action)
		}
	}
	return kind, nil
}

func substituteError(v any, msg string) any {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, schema.ErrorMessagePlaceholder) {
		return v
	}
	return strings.ReplaceAll(s, schema.ErrorMessagePlaceholder, msg)
}
