// Package store defines the observable state container contract and a
// reference in-memory implementation.
//
// A Store exposes:
//   - ID: a stable identifier
//   - Get: the current immutable value
//   - Watch: synchronous change notifications, in registration order
//   - Action: named mutations built from reducers
//   - IsReadOnly: whether writes may be routed into the store
//
// Reducers return an Update: Set(v) proposes a new value, NoChange() is an
// explicit no-op. An action commits and notifies only when the proposed value
// differs from the current one.
//
// # Setter action id
//
// Every store has a reserved setter action id, ID() + ".#set", under which
// its canonical pass-through write is registered (see Setter). Composite
// stores use it to tell their own writes apart from writes made by anyone
// else.
//
// # Thread-safety
//
// Stores assume a single logical thread of control. Watchers run
// synchronously inside the action that produced the change; nothing is
// deferred or batched.
package store
