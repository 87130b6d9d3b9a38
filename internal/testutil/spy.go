package testutil

import (
	"sync"

	"github.com/adv0cat/quench-store/internal/store"
)

// SpyStore wraps a store and counts how it is used.
//
// Tests use it to check subscription dedup and teardown of composite stores.
type SpyStore[T any] struct {
	inner store.Store[T]

	mu            sync.Mutex
	watches       int
	unsubscribes  int
	registrations []string
	dispatches    int
}

var _ store.Store[int] = (*SpyStore[int])(nil)

// NewSpyStore wraps inner.
func NewSpyStore[T any](inner store.Store[T]) *SpyStore[T] {
	return &SpyStore[T]{inner: inner}
}

func (s *SpyStore[T]) ID() string {
	return s.inner.ID()
}

func (s *SpyStore[T]) Get() T {
	return s.inner.Get()
}

func (s *SpyStore[T]) IsReadOnly() bool {
	return s.inner.IsReadOnly()
}

// Watch counts the subscription and wraps its unsubscribe.
func (s *SpyStore[T]) Watch(w store.Watcher[T]) store.Unsubscribe {
	s.mu.Lock()
	s.watches++
	s.mu.Unlock()

	unsubscribe := s.inner.Watch(w)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.unsubscribes++
			s.mu.Unlock()
			unsubscribe()
		})
	}
}

// Action records the registration (by explicit action id, "" if none) and
// counts every dispatch of the returned action.
func (s *SpyStore[T]) Action(reducer store.Reducer[T], opts ...store.ActionOption) store.Action {
	cfg := store.ApplyActionOptions(opts)
	s.mu.Lock()
	s.registrations = append(s.registrations, cfg.ID)
	s.mu.Unlock()

	action := s.inner.Action(reducer, opts...)
	return func(args ...any) bool {
		s.mu.Lock()
		s.dispatches++
		s.mu.Unlock()
		return action(args...)
	}
}

// Watches returns the number of Watch calls.
func (s *SpyStore[T]) Watches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watches
}

// ActiveWatches returns Watch calls not yet unsubscribed.
func (s *SpyStore[T]) ActiveWatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watches - s.unsubscribes
}

// Registrations returns the action ids passed to Action, in call order.
func (s *SpyStore[T]) Registrations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.registrations...)
}

// Dispatches returns the number of action invocations.
func (s *SpyStore[T]) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatches
}

// Notification is one watcher call seen by a Recorder.
type Notification[T any] struct {
	State T
	Info  store.ActionInfo
}

// Recorder collects watcher calls.
type Recorder[T any] struct {
	mu    sync.Mutex
	calls []Notification[T]
}

// Record subscribes a new Recorder to s.
func Record[T any](s store.Store[T]) *Recorder[T] {
	r := &Recorder[T]{}
	s.Watch(r.Watch)
	return r
}

// Watch is a store.Watcher.
func (r *Recorder[T]) Watch(state T, info store.ActionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Notification[T]{State: state, Info: info})
}

// Calls returns the recorded notifications.
func (r *Recorder[T]) Calls() []Notification[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification[T](nil), r.calls...)
}

// Len returns the number of recorded notifications.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent notification. It panics if there is none.
func (r *Recorder[T]) Last() Notification[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

// ActionIDs returns the action id of every notification.
func (r *Recorder[T]) ActionIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Info.ActionID
	}
	return out
}
