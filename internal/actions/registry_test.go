package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rendis/jsonrender/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopHandler is a minimal Handler for registry tests.
func noopHandler(context.Context, map[string]any) error { return nil }

func TestRegistry_Register_Success(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("save", noopHandler, "Save the form")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Count())
	assert.True(t, reg.Has("save"))
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("dup", noopHandler, ""))

	err := reg.Register("dup", noopHandler, "")
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeConflict, engErr.Code)
}

func TestRegistry_Register_Nil(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("nil", nil, "")
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeValidation, engErr.Code)
}

func TestRegistry_Register_EmptyName(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("", noopHandler, "")
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeValidation, engErr.Code)
}

func TestRegistry_Get_Success(t *testing.T) {
	reg := NewRegistry()
	var called bool
	require.NoError(t, reg.Register("fetch", func(context.Context, map[string]any) error {
		called = true
		return nil
	}, ""))

	h, err := reg.Get("fetch")
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), nil))
	assert.True(t, called)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("missing")
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeActionUnavailable, engErr.Code)
}

func TestRegistry_List_Sorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("z.action", noopHandler, "last"))
	require.NoError(t, reg.Register("a.action", noopHandler, "first"))
	require.NoError(t, reg.Register("m.action", noopHandler, "middle"))

	infos := reg.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "a.action", infos[0].Name)
	assert.Equal(t, "first", infos[0].Description)
	assert.Equal(t, "m.action", infos[1].Name)
	assert.Equal(t, "z.action", infos[2].Name)
}

func TestRegistry_List_Empty(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.List())
}

func TestRegistry_RegisterPlugin(t *testing.T) {
	reg := NewRegistry()
	n, err := reg.RegisterPlugin("cart", map[string]PluginHandler{
		"checkout": {Handler: noopHandler, Description: "Place the order"},
		"clear":    {Handler: noopHandler},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []HandlerInfo{
		{Name: "cart.checkout", Description: "Place the order"},
		{Name: "cart.clear"},
	}, reg.List())
}

func TestRegistry_RegisterPlugin_EmptyPrefix(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.RegisterPlugin("", nil)
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeValidation, engErr.Code)
}

func TestRegistry_RegisterPlugin_Conflict(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("cart.checkout", noopHandler, ""))

	_, err := reg.RegisterPlugin("cart", map[string]PluginHandler{"checkout": {Handler: noopHandler}})
	require.Error(t, err)

	var engErr *schema.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, schema.ErrCodeConflict, engErr.Code)
}

func TestRegistry_RegisterPlugin_NilHandler(t *testing.T) {
	reg := NewRegistry()
	n, err := reg.RegisterPlugin("cart", map[string]PluginHandler{
		"a": {Handler: noopHandler},
		"b": {},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, reg.Has("cart.a"))
	assert.False(t, reg.Has("cart.b"))
}

func TestRegistry_Has_False(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Has("nonexistent"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n * 3)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name := "concurrent." + string(rune('a'+i%26)) + string(rune('0'+i/26))
			_ = reg.Register(name, noopHandler, "")
		}(i)
	}

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = reg.Get("concurrent.a0")
		}()
	}

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = reg.List()
		}()
	}

	wg.Wait()
	assert.Equal(t, n, reg.Count())
}
