// Package join composes independently owned stores into one derived store.
//
// A join is built from an ordered list of (key, store) inputs. Its snapshot
// maps every key to the current value of its input, in input order, and is
// replaced wholesale whenever any input changes, whoever triggered the
// change. A join is itself a store.Store[Snapshot], so joins nest:
//
//	ab := join.MustNew([]join.Input{join.Bind[int]("x", a), join.Bind[int]("y", b)})
//	abc := join.MustNew([]join.Input{join.Bind[join.Snapshot]("p", ab), join.Bind[int]("q", c)})
//	abc.ID() // "{{a;b};c}"
//
// # Components
//
//   - Snapshot cache: computeSnapshot reads every input once, in order.
//   - Identity assembler: computeID wraps the ";"-joined input ids in braces.
//   - Subscription router: one route per distinct input (keyed by the
//     input's setter action id) holding the watch subscription and, for
//     writable inputs, the pass-through proxy action.
//   - Composite action factory: Action runs a reducer over the snapshot and
//     routes the keys it returns to the owning inputs.
//
// # Notifications
//
// A change made through a join's own action is reported once, after the
// snapshot is recomputed, with that action's id. The input notifications
// caused by the join's proxy writes are recognised as self writes and
// suppressed. Every other input change is forwarded with the incoming
// ActionInfo after a single recompute.
//
// # Thread-safety
//
// A join assumes a single logical thread of control. Reentrant dispatch (a
// watcher calling an action of the same join during a notify) is allowed,
// logged at Warn, and delivered depth-first; consistency under reentry is
// the caller's responsibility.
package join
