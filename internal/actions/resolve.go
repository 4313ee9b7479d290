package actions

import (
	"github.com/rendis/jsonrender/internal/expressions"
	"github.com/rendis/jsonrender/pkg/schema"
)

// ResolveAction resolves an action definition against the current data.
// Params are resolved key by key and confirmation text is interpolated.
// onSuccess and onError are carried over as they are: their set values are
// literals applied at execution time, not path references.
func ResolveAction(action schema.Action, src expressions.Source) schema.ResolvedAction {
	resolved := schema.ResolvedAction{
		Name:      action.Name,
		Params:    expressions.ResolveParams(action.Params, src),
		OnSuccess: action.OnSuccess,
		OnError:   action.OnError,
	}

	if action.Confirm != nil {
		confirm := &schema.ConfirmSpec{
			Title: expressions.InterpolateString(action.Confirm.Title, src),
		}
		if action.Confirm.Message != "" {
			confirm.Message = expressions.InterpolateString(action.Confirm.Message, src)
		}
		resolved.Confirm = confirm
	}

	return resolved
}
