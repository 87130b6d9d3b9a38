package join

import "github.com/adv0cat/quench-store/internal/store"

// Input binds a snapshot key to a store.
type Input struct {
	Key    string
	source source
}

// Bind creates an Input for s under key.
func Bind[T any](key string, s store.Store[T]) Input {
	if s == nil {
		return Input{Key: key}
	}
	return Input{Key: key, source: binding[T]{s: s}}
}

// source is the type-erased view of an input store.
type source interface {
	id() string
	get() any
	watch(fn func(info store.ActionInfo)) store.Unsubscribe
	readOnly() bool
	setter() store.Action
}

type binding[T any] struct {
	s store.Store[T]
}

func (b binding[T]) id() string {
	return b.s.ID()
}

func (b binding[T]) get() any {
	return b.s.Get()
}

func (b binding[T]) watch(fn func(info store.ActionInfo)) store.Unsubscribe {
	return b.s.Watch(func(_ T, info store.ActionInfo) {
		fn(info)
	})
}

func (b binding[T]) readOnly() bool {
	return b.s.IsReadOnly()
}

// setter registers the pass-through proxy under the store's setter id.
func (b binding[T]) setter() store.Action {
	return b.s.Action(func(_ T, args ...any) store.Update[T] {
		if len(args) == 0 {
			return store.NoChange[T]()
		}
		return coerce[T](args[0])
	}, store.WithActionID(store.SetterActionID(b.s.ID())))
}

// coerce turns a patch value into an update for a T input. A plain map is
// accepted where T is Snapshot so nested joins can be written with maps.
func coerce[T any](value any) store.Update[T] {
	if v, ok := store.Coerce[T](value); ok {
		return store.Set(v)
	}
	if m, ok := value.(map[string]any); ok {
		if v, ok := any(Patch(m)).(T); ok {
			return store.Set(v)
		}
	}
	return store.NoChange[T]()
}
