package coalesce

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultCapacity = 128

type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Group deduplicates calls by key. The zero value is not usable; build one
// with New.
type Group[V any] struct {
	mu     sync.Mutex
	calls  map[string]*call[V]
	recent *expirable.LRU[string, V]
}

// New returns a group that keeps successful results for grace. A grace of
// zero disables the result window and only in-flight calls are shared.
func New[V any](grace time.Duration, capacity int) *Group[V] {
	g := &Group[V]{calls: make(map[string]*call[V])}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if grace > 0 {
		g.recent = expirable.NewLRU[string, V](capacity, nil, grace)
	}
	return g
}

// Do runs fn once per key among concurrent callers. shared is true when
// the value came from another caller's call or from the grace window.
// fn runs detached from the caller's cancellation so one impatient caller
// cannot fail the others; each caller still stops waiting when its own ctx
// ends. Errors are never cached.
func (g *Group[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (value V, shared bool, err error) {
	g.mu.Lock()
	if g.recent != nil {
		if v, ok := g.recent.Get(key); ok {
			g.mu.Unlock()
			return v, true, nil
		}
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		return g.wait(ctx, c, true)
	}
	c := &call[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	go g.run(context.WithoutCancel(ctx), key, c, fn)
	return g.wait(ctx, c, false)
}

func (g *Group[V]) run(ctx context.Context, key string, c *call[V], fn func(context.Context) (V, error)) {
	c.value, c.err = fn(ctx)

	g.mu.Lock()
	delete(g.calls, key)
	if c.err == nil && g.recent != nil {
		g.recent.Add(key, c.value)
	}
	g.mu.Unlock()
	close(c.done)
}

func (g *Group[V]) wait(ctx context.Context, c *call[V], shared bool) (V, bool, error) {
	select {
	case <-c.done:
		return c.value, shared, c.err
	case <-ctx.Done():
		var zero V
		return zero, shared, ctx.Err()
	}
}

// Forget drops any cached result for key. An in-flight call is unaffected.
func (g *Group[V]) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.recent != nil {
		g.recent.Remove(key)
	}
}

// InFlight reports how many keys currently have a running call.
func (g *Group[V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
