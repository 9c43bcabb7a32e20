package stripe

import (
	"context"
	"fmt"
)

// Future is the pending result of a call. It resolves exactly once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in its own goroutine and returns a Future for its result.
// Cancelling ctx does not stop fn: a dispatched call runs to completion.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	future := &Future[T]{done: make(chan struct{})}
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(future.done)
		defer func() {
			if r := recover(); r != nil {
				future.err = fmt.Errorf("%w: %v", ErrPanicked, r)
			}
		}()

		future.value, future.err = fn(runCtx)
	}()

	return future
}

// Resolved returns a Future that already holds value.
func Resolved[T any](value T) *Future[T] {
	future := &Future[T]{done: make(chan struct{}), value: value}
	close(future.done)

	return future
}

// Rejected returns a Future that already failed with err.
func Rejected[T any](err error) *Future[T] {
	future := &Future[T]{done: make(chan struct{}), err: err}
	close(future.done)

	return future
}

// Done is closed once the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result. If ctx ends first, Await returns ctx.Err() and
// the underlying call keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Result blocks until the future resolves.
func (f *Future[T]) Result() (T, error) {
	<-f.done

	return f.value, f.err
}

// Then chains fn after f. fn only runs when f succeeded.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, value T) (U, error)) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		value, err := f.Result()
		if err != nil {
			var zero U

			return zero, err
		}

		return fn(ctx, value)
	})
}
