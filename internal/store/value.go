package store

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/adv0cat/quench-store/internal/ids"
)

// Option configures a Value store.
type Option func(*config)

type config struct {
	equal  any
	logger *slog.Logger
	ids    ids.Generator
}

// WithEqual sets the equality used to detect no-op writes.
// The default is reflect.DeepEqual.
func WithEqual[T any](equal func(a, b T) bool) Option {
	return func(cfg *config) {
		cfg.equal = equal
	}
}

// WithLogger sets the diagnostic logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithIDs sets the generator used for actions without an explicit id.
func WithIDs(gen ids.Generator) Option {
	return func(cfg *config) {
		cfg.ids = gen
	}
}

// Value is the reference in-memory Store.
type Value[T any] struct {
	id       string
	state    T
	equal    func(a, b T) bool
	logger   *slog.Logger
	ids      ids.Generator
	watchers Notifier[T]
}

// New creates a writable store holding initial.
func New[T any](id string, initial T, opts ...Option) *Value[T] {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	equal, ok := cfg.equal.(func(a, b T) bool)
	if !ok || equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	logger := cfg.logger
	if logger == nil {
		logger = discardLogger()
	}

	return &Value[T]{
		id:     id,
		state:  initial,
		equal:  equal,
		logger: logger.With(slog.String("store", id)),
		ids:    cfg.ids,
	}
}

// ID returns the store id.
func (s *Value[T]) ID() string {
	return s.id
}

// Get returns the current state.
func (s *Value[T]) Get() T {
	return s.state
}

// Watch registers w for change notifications.
func (s *Value[T]) Watch(w Watcher[T]) Unsubscribe {
	return s.watchers.Watch(w)
}

// IsReadOnly reports false: a Value always accepts writes.
func (s *Value[T]) IsReadOnly() bool {
	return false
}

// Action builds a mutation from reducer.
func (s *Value[T]) Action(reducer Reducer[T], opts ...ActionOption) Action {
	cfg := ApplyActionOptions(opts)
	return func(args ...any) bool {
		actionID := ids.Resolve(s.ids, cfg.ID)
		log := s.logger.With(slog.String("action", actionID))

		next, ok := reducer(s.state, args...).Value()
		if !ok || s.equal(s.state, next) {
			log.Debug("not changed")
			return false
		}

		log.Debug("changed", slog.Any("from", s.state), slog.Any("to", next))
		s.state = next
		s.watchers.Notify(next, ActionInfo{ActionID: actionID})
		return true
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
