package store

// Notifier is a registry of watchers shared by Store implementations.
//
// Watchers are invoked synchronously in registration order. A watcher that
// unsubscribes during a notify cycle is not called for the remainder of that
// cycle; a watcher registered during a cycle is first called on the next one.
//
// The zero value is ready to use.
type Notifier[T any] struct {
	entries []*watcherEntry[T]
}

type watcherEntry[T any] struct {
	fn     Watcher[T]
	active bool
}

// Watch registers w and returns its Unsubscribe.
func (n *Notifier[T]) Watch(w Watcher[T]) Unsubscribe {
	if w == nil {
		return func() {}
	}
	entry := &watcherEntry[T]{fn: w, active: true}
	n.entries = append(n.entries, entry)
	return func() {
		if !entry.active {
			return
		}
		entry.active = false
		n.remove(entry)
	}
}

// Notify calls every active watcher with state and info.
func (n *Notifier[T]) Notify(state T, info ActionInfo) {
	entries := n.entries
	for _, entry := range entries {
		if !entry.active {
			continue
		}
		entry.fn(state, info)
	}
}

// Len returns the number of registered watchers.
func (n *Notifier[T]) Len() int {
	return len(n.entries)
}

// remove builds a fresh slice so a Notify in progress keeps iterating the
// slice it started with.
func (n *Notifier[T]) remove(target *watcherEntry[T]) {
	kept := make([]*watcherEntry[T], 0, len(n.entries))
	for _, entry := range n.entries {
		if entry != target {
			kept = append(kept, entry)
		}
	}
	n.entries = kept
}
