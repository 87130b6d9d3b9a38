package join

import (
	"log/slog"

	"github.com/adv0cat/quench-store/internal/ids"
	"github.com/adv0cat/quench-store/internal/store"
)

// Action builds a composite action.
//
// Each call resolves its action id (the WithActionID option, else a fresh id),
// runs reducer over the current snapshot and writes every key of the result
// that is bound to a writable input, in input order. NoChange, or returning
// the current snapshot itself, is a no-op. When at least one input changed,
// the snapshot is recomputed once, watchers are notified once with the
// action id, and the call returns true.
func (j *Store) Action(reducer store.Reducer[Snapshot], opts ...store.ActionOption) store.Action {
	cfg := store.ApplyActionOptions(opts)
	return func(args ...any) bool {
		actionID := ids.Resolve(j.ids, cfg.ID)
		log := j.logger.With(slog.String("action", actionID))
		log.Debug("action dispatched", slog.Any("args", args))
		if j.notifying > 0 {
			log.Warn("reentrant action dispatch", slog.Int("depth", j.notifying))
		}

		current := j.state
		result, ok := reducer(current, args...).Value()
		if !ok || result.Same(current) {
			log.Debug("not changed")
			return false
		}

		if !j.apply(result) {
			log.Debug("not changed")
			return false
		}

		j.state = j.computeSnapshot()
		log.Debug("changed", slog.Any("from", current), slog.Any("to", j.state))
		j.notify(j.state, store.ActionInfo{ActionID: actionID})
		return true
	}
}

// apply writes the keys of result through the input proxies.
func (j *Store) apply(result Snapshot) bool {
	changed := false
	for i, in := range j.inputs {
		r := j.bindings[i]
		if r.proxy == nil {
			continue
		}
		value, ok := result.Lookup(in.Key)
		if !ok {
			continue
		}
		if !j.write(r, value) {
			continue
		}
		changed = true
		if j.mode == ApplyFirstChange {
			break
		}
	}
	return changed
}
