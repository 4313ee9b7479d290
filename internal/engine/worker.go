package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// PoolMetrics tracks action pool operational metrics.
type PoolMetrics struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Panics    int64 `json:"panics"`
}

// ErrPoolShutdown is returned when work is submitted to a shut-down pool.
var ErrPoolShutdown = errors.New("action pool is shut down")

// ActionPool runs asynchronous action invocations with bounded concurrency
// and tracks which action names are in flight.
type ActionPool struct {
	sem     chan struct{}
	wg      sync.WaitGroup
	metrics PoolMetrics
	mu      sync.Mutex
	pending map[string]int
	done    chan struct{}
	closed  bool
}

// NewActionPool creates a pool with the given max concurrency.
func NewActionPool(size int) *ActionPool {
	if size <= 0 {
		size = 1
	}
	return &ActionPool{
		sem:     make(chan struct{}, size),
		pending: make(map[string]int),
		done:    make(chan struct{}),
	}
}

// Track marks name as in flight until the returned release func is called.
// Synchronous dispatch uses it directly; Submit uses it for queued work.
func (p *ActionPool) Track(name string) (release func()) {
	p.mu.Lock()
	p.pending[name]++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.pending[name] <= 1 {
				delete(p.pending, name)
				return
			}
			p.pending[name]--
		})
	}
}

// Pending reports whether at least one invocation of name is in flight.
func (p *ActionPool) Pending(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[name] > 0
}

// PendingNames returns the sorted names of in-flight actions.
func (p *ActionPool) PendingNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.pending))
	for name := range p.pending {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Submit runs fn on a pool goroutine. It blocks while the pool is at
// capacity and respects context cancellation while waiting. name is pending
// from the moment Submit is called until fn returns. onDone, if non-nil,
// receives fn's result.
func (p *ActionPool) Submit(ctx context.Context, name string, fn func(ctx context.Context) error, onDone func(error)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolShutdown
	}
	p.mu.Unlock()

	release := p.Track(name)

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		release()
		return ctx.Err()
	case <-p.done:
		release()
		return ErrPoolShutdown
	}

	// wg.Add must happen under the lock so Shutdown's Wait cannot miss it.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.sem
		release()
		return ErrPoolShutdown
	}
	p.wg.Add(1)
	atomic.AddInt64(&p.metrics.Active, 1)
	p.mu.Unlock()

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				atomic.AddInt64(&p.metrics.Panics, 1)
				atomic.AddInt64(&p.metrics.Failed, 1)
			}
			atomic.AddInt64(&p.metrics.Active, -1)
			release()
			<-p.sem
			p.wg.Done()
		}()

		err = fn(ctx)
		if err != nil {
			atomic.AddInt64(&p.metrics.Failed, 1)
		} else {
			atomic.AddInt64(&p.metrics.Completed, 1)
		}
		release()
		if onDone != nil {
			onDone(err)
		}
	}()

	return nil
}

// Wait blocks until all submitted work completes.
func (p *ActionPool) Wait() {
	p.wg.Wait()
}

// Shutdown prevents new submissions and waits for active work to complete.
func (p *ActionPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Metrics returns a snapshot of the current pool metrics.
func (p *ActionPool) Metrics() PoolMetrics {
	return PoolMetrics{
		Active:    atomic.LoadInt64(&p.metrics.Active),
		Completed: atomic.LoadInt64(&p.metrics.Completed),
		Failed:    atomic.LoadInt64(&p.metrics.Failed),
		Panics:    atomic.LoadInt64(&p.metrics.Panics),
	}
}
