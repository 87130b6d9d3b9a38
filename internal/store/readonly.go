package store

// ReadOnly returns a read-only view of s. Reads and watches are forwarded;
// actions built on the view never change state.
func ReadOnly[T any](s Store[T]) Store[T] {
	return readOnly[T]{inner: s}
}

type readOnly[T any] struct {
	inner Store[T]
}

func (r readOnly[T]) ID() string { return r.inner.ID() }
func (r readOnly[T]) Get() T { return r.inner.Get() }
func (r readOnly[T]) Watch(w Watcher[T]) Unsubscribe { return r.inner.Watch(w) }
func (r readOnly[T]) IsReadOnly() bool { return true }

func (r readOnly[T]) Action(Reducer[T], ...ActionOption) Action {
	return func(...any) bool { return false }
}
