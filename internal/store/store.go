package store

import "reflect"

// Unsubscribe detaches a watcher. Calling it more than once is a no-op.
type Unsubscribe func()

// ActionInfo describes the action that produced a change.
type ActionInfo struct {
	ActionID string
}

// Watcher receives the new state and the originating action.
type Watcher[T any] func(state T, info ActionInfo)

// Update is the result of a reducer: either a proposed value or NoChange.
type Update[T any] struct {
	value T
	set   bool
}

// Set proposes value as the next state.
func Set[T any](value T) Update[T] {
	return Update[T]{value: value, set: true}
}

// NoChange marks a reducer result as an explicit no-op.
func NoChange[T any]() Update[T] {
	return Update[T]{}
}

// Value returns the proposed value and whether one was proposed.
func (u Update[T]) Value() (T, bool) {
	return u.value, u.set
}

// Reducer computes the next state from the current state and call arguments.
type Reducer[T any] func(state T, args ...any) Update[T]

// Action applies a mutation. It returns true only if the state changed.
type Action func(args ...any) bool

// ActionConfig holds the resolved action options.
type ActionConfig struct {
	// ID is the explicit action id. Empty means "generate one per call".
	ID string
}

// ActionOption configures an action.
type ActionOption func(*ActionConfig)

// WithActionID names the action. Every invocation is reported with this id.
func WithActionID(id string) ActionOption {
	return func(cfg *ActionConfig) {
		cfg.ID = id
	}
}

// ApplyActionOptions resolves opts into an ActionConfig.
func ApplyActionOptions(opts []ActionOption) ActionConfig {
	var cfg ActionConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Store is an observable state container.
type Store[T any] interface {
	ID() string
	Get() T
	Watch(w Watcher[T]) Unsubscribe
	Action(reducer Reducer[T], opts ...ActionOption) Action
	IsReadOnly() bool
}

const setterSuffix = ".#set"

// SetterActionID returns the reserved setter action id of the store with the
// given id.
func SetterActionID(storeID string) string {
	return storeID + setterSuffix
}

// Setter returns the pass-through action of s: it replaces the state with its
// first argument and is reported under SetterActionID(s.ID()).
//
// A first argument that is not a T is treated as NoChange. A nil argument
// sets the zero T when T is an interface, map, slice, pointer, func or
// channel type.
func Setter[T any](s Store[T]) Action {
	return s.Action(func(_ T, args ...any) Update[T] {
		if len(args) == 0 {
			return NoChange[T]()
		}
		value, ok := Coerce[T](args[0])
		if !ok {
			return NoChange[T]()
		}
		return Set(value)
	}, WithActionID(SetterActionID(s.ID())))
}

// Coerce converts a setter argument to T. Nil converts to the zero T when
// T can hold nil.
func Coerce[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}
	var zero T
	if value == nil && nilable(reflect.TypeFor[T]()) {
		return zero, true
	}
	return zero, false
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
