package async

import (
	"context"
	"fmt"
)

// Task is the pending result of a function running on its own goroutine.
// Exactly one of the value or the error is meaningful once Done is closed.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in a new goroutine. A panic in fn is reported as the task error.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				t.value = zero
				t.err = fmt.Errorf("task panic: %v", rec)
			}
		}()

		v, err := fn(ctx)
		if err != nil {
			var zero T
			v = zero
		}
		t.value, t.err = v, err
	}()

	return t
}

// Done is closed when the task has finished.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task finishes or ctx ends. Returning early on ctx
// does not stop the task.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains next onto t. next runs only when t succeeds; otherwise the
// error is carried through unchanged.
func Then[T, U any](ctx context.Context, t *Task[T], next func(ctx context.Context, v T) (U, error)) *Task[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := t.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return next(ctx, v)
	})
}
