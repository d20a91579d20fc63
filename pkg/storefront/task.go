package storefront

import "context"

// Task is the eventual result of an operation started with Async
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Async runs fn in its own goroutine. The context handed to fn keeps the
// values of ctx but not its cancellation: once issued, a request runs to
// completion or failure.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		t.val, t.err = fn(detached)
	}()
	return t
}

// Done is closed when the task has finished
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its outcome
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.val, t.err
}
