package join

import (
	"log/slog"

	"github.com/adv0cat/quench-store/internal/store"
)

// origin classifies an input notification.
type origin int

const (
	// externalChange is any change not written by this join.
	externalChange origin = iota
	// selfWrite is the echo of this join's own proxy write.
	selfWrite
)

func (o origin) String() string {
	if o == selfWrite {
		return "self_write"
	}
	return "external_change"
}

// route is the single subscription kept for one distinct input store.
// Inputs sharing a store (same setter id) share the route.
type route struct {
	setterID    string
	unsubscribe store.Unsubscribe
	// proxy is nil for read-only inputs.
	proxy store.Action
}

// classify reports selfWrite while this join is writing through any route
// whose setter id the change carries. A change that reaches this join by
// another path during its own write (a store shared with a nested join) is
// still the echo of that write. A write through another join's proxy on a
// shared input is external here.
func (j *Store) classify(info store.ActionInfo) origin {
	if j.writing[info.ActionID] > 0 {
		return selfWrite
	}
	return externalChange
}

// write pushes value into the input behind r through its proxy.
func (j *Store) write(r *route, value any) bool {
	j.writing[r.setterID]++
	defer func() {
		j.writing[r.setterID]--
		if j.writing[r.setterID] == 0 {
			delete(j.writing, r.setterID)
		}
	}()
	return r.proxy(value)
}

// subscribe installs one route per distinct setter id, in input order, and
// binds every input to its route.
func (j *Store) subscribe() {
	j.routes = make(map[string]*route, len(j.inputs))
	j.writing = make(map[string]int)
	j.bindings = make([]*route, len(j.inputs))
	for i, in := range j.inputs {
		setterID := store.SetterActionID(in.source.id())
		r, seen := j.routes[setterID]
		if !seen {
			r = &route{setterID: setterID}
			r.unsubscribe = in.source.watch(j.forward(r))
			if !in.source.readOnly() {
				r.proxy = in.source.setter()
			}
			j.routes[setterID] = r
			j.order = append(j.order, r)
		}
		j.bindings[i] = r
	}
}

// forward handles a notification from the input behind r.
func (j *Store) forward(r *route) func(store.ActionInfo) {
	return func(info store.ActionInfo) {
		kind := j.classify(info)
		if kind == selfWrite {
			j.logger.Debug("input change suppressed",
				slog.String("input", r.setterID),
				slog.String("origin", kind.String()),
			)
			return
		}

		j.state = j.computeSnapshot()
		j.logger.Debug("input change forwarded",
			slog.String("input", r.setterID),
			slog.String("origin", kind.String()),
			slog.String("action", info.ActionID),
		)
		j.notify(j.state, info)
	}
}
