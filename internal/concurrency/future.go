package concurrency

// Future is a handle to a value produced by a pool task. Get blocks until
// the producing task completes.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Resolved returns an already-completed future. Used for values known
// synchronously, such as constants and placeholder bindings.
func Resolved[T any](value T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// Failed returns an already-completed future carrying an error.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Get blocks until the value or the task's error is available.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Go submits fn to the pool and returns a future for its result. A
// submission failure surfaces as an already-failed future.
func Go[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	err := p.submit(func() {
		f.value, f.err = fn()
		close(f.done)
	})
	if err != nil {
		return Failed[T](err)
	}
	return f
}
