package async

import (
	"context"
	"sync"
)

// Latest holds the most recently observed response for a resource. Responses
// are applied in the order they arrive, not the order requests were issued,
// and a response arriving after its Scope was cancelled is dropped.
type Latest[T any] struct {
	mu       sync.Mutex
	value    T
	has      bool
	observed uint64
}

// Observe records v as the current value unless scope is no longer active.
// It returns the observation sequence, or 0 when the value was dropped.
func (l *Latest[T]) Observe(scope *Scope, v T) uint64 {
	if scope != nil && !scope.Active() {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.observed++
	l.value = v
	l.has = true
	return l.observed
}

// Get returns the current value and whether any value was observed.
func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}

// Seq is the number of observations applied so far.
func (l *Latest[T]) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.observed
}

// Scope is the lifetime of whatever started a request, such as a screen or a
// CLI command. Results delivered after Close must not be applied.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Active() bool {
	return s.ctx.Err() == nil
}

func (s *Scope) Close() {
	s.cancel()
}

// Deliver runs apply with the task result only while the scope is active.
// It reports whether apply ran.
func Deliver[T any](scope *Scope, t *Task[T], apply func(T, error)) bool {
	select {
	case <-t.Done():
	case <-scope.Context().Done():
		return false
	}
	if !scope.Active() {
		return false
	}
	v, err := t.Await(context.Background())
	apply(v, err)
	return true
}
