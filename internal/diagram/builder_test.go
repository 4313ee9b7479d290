package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/jsonrender/pkg/schema"
)

func formTree() *schema.ElementTree {
	return &schema.ElementTree{Root: "form", Elements: map[string]*schema.UIElement{
		"form": {Key: "form", Type: "Card", Children: []string{"name", "submit", "ghost"}},
		"name": {Key: "name", Type: "Input"},
		"submit": {Key: "submit", Type: "Button", Props: map[string]any{
			"label": "Send",
			"action": map[string]any{
				"name":      "submit",
				"onSuccess": map[string]any{"navigate": "/done"},
				"onError":   map[string]any{"set": map[string]any{"error": "$error.message", "busy": false}},
			},
		}},
		"orphan": {Key: "orphan", Type: "Text"},
	}}
}

func TestBuild(t *testing.T) {
	model, err := Build(formTree(), []string{"action"}, nil)
	require.NoError(t, err)

	var ids []string
	for _, n := range model.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{
		"el_form", "missing_form_ghost",
		"el_name", "el_submit",
		"act_submit_action", "nav_/done", "act_submit_action_onError_set",
		"el_orphan",
	}, ids)

	assert.Contains(t, model.Edges, Edge{From: "el_form", To: "el_submit", Style: EdgeChild})
	assert.Contains(t, model.Edges, Edge{From: "el_submit", To: "act_submit_action", Label: "action", Style: EdgeAction})
	assert.Contains(t, model.Edges, Edge{From: "act_submit_action", To: "nav_/done", Label: "onSuccess", Style: EdgeAction})

	last := model.Nodes[len(model.Nodes)-1]
	assert.Equal(t, "unreachable", last.Status)
	assert.Equal(t, "set busy, error", model.Nodes[6].Label)
}

func TestBuild_Overlay(t *testing.T) {
	model, err := Build(formTree(), []string{"action"}, &Overlay{
		Invalid: map[string]bool{"name": true},
		Pending: map[string]bool{"submit": true},
	})
	require.NoError(t, err)

	status := map[string]string{}
	for _, n := range model.Nodes {
		status[n.ID] = n.Status
	}
	assert.Equal(t, "invalid", status["el_name"])
	assert.Equal(t, "pending", status["act_submit_action"])
	assert.Empty(t, status["el_form"])
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil, nil, nil)
	require.Error(t, err)

	_, err = Build(&schema.ElementTree{Root: "x"}, nil, nil)
	var engErr *schema.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, schema.ErrCodeNotFound, engErr.Code)
}

func TestBuild_ChainedActionSharedNode(t *testing.T) {
	tree := &schema.ElementTree{Root: "s", Elements: map[string]*schema.UIElement{
		"s": {Key: "s", Type: "Stack", Children: []string{"a", "b"}},
		"a": {Key: "a", Type: "Button", Props: map[string]any{"action": map[string]any{"name": "x", "onSuccess": map[string]any{"action": "refresh"}}}},
		"b": {Key: "b", Type: "Button", Props: map[string]any{"action": map[string]any{"name": "y", "onError": map[string]any{"action": "refresh"}}}},
	}}

	model, err := Build(tree, []string{"action"}, nil)
	require.NoError(t, err)

	count := 0
	for _, n := range model.Nodes {
		if n.ID == "act_refresh" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
