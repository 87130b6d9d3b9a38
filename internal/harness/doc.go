// Package harness runs declarative store scenarios.
//
// A scenario declares primitive stores, joins over them, a flow of actions
// and assertions. The harness builds the stores and joins, subscribes a
// recorder to every one of them, dispatches the flow and checks the
// assertions against the recorded trace and the final state.
//
// # Scenario Format
//
// Scenarios are YAML (unknown fields rejected) or CUE files:
//
//	name: shared_store
//	description: "Two keys over one store share a subscription"
//	stores:
//	  - id: s
//	    value: 1
//	  - id: r
//	    value: 0
//	    read_only: true
//	joins:
//	  - name: mn
//	    inputs:
//	      - { key: m, store: s }
//	      - { key: n, store: s }
//	    apply: all          # or "first"
//	flow:
//	  - target: mn
//	    patch: { m: 3 }
//	    action_id: bump     # optional, generated when empty
//	    expect: { changed: true }
//	  - target: s
//	    set: 4
//	  - target: mn
//	    noop: true
//	assertions:
//	  - { type: notify_count, target: mn, count: 2 }
//	  - { type: final_state, target: mn, expect: { m: 4, n: 4 } }
//	  - { type: store_id, target: mn, id: "{s;s}" }
//	  - { type: trace_contains, target: mn, action_id: bump }
//
// # Trace
//
// Every flow step adds an "action" event; every watcher call on a store or
// join adds a "notify" event carrying the action id and the new state.
// Events are stamped by a testutil.DeterministicClock and action ids come
// from a fresh ids.Sequence per run, so traces are reproducible and can be
// compared with golden files (see RunWithGolden).
package harness
