package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/rendis/jsonrender/internal/actions"
	"github.com/rendis/jsonrender/internal/datastore"
	"github.com/rendis/jsonrender/pkg/schema"
)

func BenchmarkActionPool(b *testing.B) {
	for _, size := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			pool := NewActionPool(size)
			defer pool.Shutdown()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = pool.Submit(ctx, "save", func(ctx context.Context) error {
					return nil
				}, nil)
			}
			pool.Wait()
		})
	}
}

func BenchmarkActionPool_Track(b *testing.B) {
	pool := NewActionPool(1)
	defer pool.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		release := pool.Track("save")
		_ = pool.Pending("save")
		release()
	}
}

func BenchmarkExecute(b *testing.B) {
	store := datastore.New(map[string]any{"user": map[string]any{"id": "u-1"}})
	exec := NewExecutor(ExecutorConfig{})
	handler := actions.Handler(func(context.Context, map[string]any) error { return nil })
	action := schema.Action{
		Name:      "save",
		Params:    map[string]schema.DynamicValue{"id": schema.PathRef("/user/id")},
		OnSuccess: schema.SetValues(map[string]any{"saved": true}),
	}
	cb := Callbacks{SetData: func(key string, value any) { store.Set(datastore.JoinPath(key), value) }}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := exec.Execute(ctx, Request{Action: action, Data: store, Handler: handler, Callbacks: cb}); err != nil {
			b.Fatal(err)
		}
	}
}
