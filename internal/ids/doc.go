// Package ids generates action identifiers.
//
// Every accepted mutation is tagged with an action id that travels with the
// change notification to every watcher. Callers may name an action
// explicitly; otherwise an id is drawn from a Generator.
//
// Generators:
//   - Sequence: "#1", "#2", ... from a monotonic logical clock (default)
//   - UUIDv7: time-sortable UUIDs for ids that must be unique across processes
//   - Fixed: a predetermined list, for tests
//
// The package-level Default sequence plays the role of a process-wide
// counter so that stores built without an explicit generator still receive
// distinct ids.
package ids
