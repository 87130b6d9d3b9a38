package harness

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/adv0cat/quench-store/internal/ids"
	"github.com/adv0cat/quench-store/internal/join"
	"github.com/adv0cat/quench-store/internal/store"
	"github.com/adv0cat/quench-store/internal/testutil"
)

// Option configures a harness run.
type Option func(*Harness)

// WithLogger routes store, join and harness diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Harness holds the stores and joins built from one scenario.
//
// Every run gets a fresh action id sequence and a fresh trace clock, so the
// same scenario always yields the same trace.
type Harness struct {
	scenario *Scenario
	clock    *testutil.DeterministicClock
	ids      ids.Generator
	logger   *slog.Logger
	result   *Result

	targets map[string]*target
	order   []string
	joins   []*join.Store
}

// target is a store or join addressed by name in the scenario.
type target struct {
	name  string
	id    func() string
	state func() any
	// dispatch runs one flow step and returns the action result.
	dispatch func(step FlowStep) (bool, error)
	// bind creates a join input for this target.
	bind func(key string) join.Input
}

// Build creates the stores and joins of scenario and subscribes the trace
// recorder to each of them, without running the flow.
func Build(scenario *Scenario, opts ...Option) (*Harness, error) {
	h := &Harness{
		scenario: scenario,
		clock:    testutil.NewDeterministicClock(),
		ids:      ids.NewSequence(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		result:   NewResult(),
		targets:  make(map[string]*target),
	}
	for _, opt := range opts {
		opt(h)
	}

	for _, def := range scenario.Stores {
		h.addStore(def)
	}
	for i, def := range scenario.Joins {
		if err := h.addJoin(def); err != nil {
			h.Close()
			return nil, fmt.Errorf("joins[%d]: %w", i, err)
		}
	}
	return h, nil
}

// Run builds scenario, executes its flow, evaluates its assertions and
// returns the result. Flow and assertion failures are reported in the
// result; the error is for scenarios that cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h, err := Build(scenario, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario: %w", err)
	}
	defer h.Close()

	if err := h.executeFlow(); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	h.snapshotState()
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// Targets returns the store and join names in declaration order.
func (h *Harness) Targets() []string {
	return append([]string(nil), h.order...)
}

// ID returns the store id of the named target.
func (h *Harness) ID(name string) (string, bool) {
	t, ok := h.targets[name]
	if !ok {
		return "", false
	}
	return t.id(), true
}

// Close detaches every join from its inputs.
func (h *Harness) Close() {
	for _, j := range h.joins {
		_ = j.Close()
	}
}

func (h *Harness) addStore(def StoreDef) {
	value := store.New[any](def.ID, def.Value,
		store.WithIDs(h.ids),
		store.WithLogger(h.logger),
	)
	var s store.Store[any] = value
	if def.ReadOnly {
		s = store.ReadOnly[any](value)
	}

	s.Watch(func(state any, info store.ActionInfo) {
		h.result.addNotify(h.clock.Next(), def.ID, info.ActionID, state)
	})

	h.register(&target{
		name:  def.ID,
		id:    s.ID,
		state: func() any { return s.Get() },
		dispatch: func(step FlowStep) (bool, error) {
			return dispatchStore(s, step)
		},
		bind: func(key string) join.Input {
			return join.Bind[any](key, s)
		},
	})
}

func (h *Harness) addJoin(def JoinDef) error {
	mode, err := join.ParseApplyMode(def.Apply)
	if err != nil {
		return err
	}

	inputs := make([]join.Input, 0, len(def.Inputs))
	for _, in := range def.Inputs {
		t, ok := h.targets[in.Store]
		if !ok {
			return fmt.Errorf("unknown store %q", in.Store)
		}
		inputs = append(inputs, t.bind(in.Key))
	}

	j, err := join.New(inputs,
		join.WithIDs(h.ids),
		join.WithLogger(h.logger),
		join.WithApplyMode(mode),
	)
	if err != nil {
		return err
	}
	h.joins = append(h.joins, j)

	j.Watch(func(state join.Snapshot, info store.ActionInfo) {
		h.result.addNotify(h.clock.Next(), def.Name, info.ActionID, state.ToMap())
	})

	h.register(&target{
		name:  def.Name,
		id:    j.ID,
		state: func() any { return j.Get().ToMap() },
		dispatch: func(step FlowStep) (bool, error) {
			return dispatchJoin(j, step)
		},
		bind: func(key string) join.Input {
			return join.Bind[join.Snapshot](key, j)
		},
	})
	return nil
}

func (h *Harness) register(t *target) {
	h.targets[t.name] = t
	h.order = append(h.order, t.name)
}

// executeFlow dispatches every flow step in order.
func (h *Harness) executeFlow() error {
	for i, step := range h.scenario.Flow {
		t, ok := h.targets[step.Target]
		if !ok {
			return fmt.Errorf("flow step %d: unknown target %q", i, step.Target)
		}

		op := step.Op()
		idx := h.result.addAction(h.clock.Next(), step.Target, step.ActionID, op, stepValue(step))
		changed, err := t.dispatch(step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		h.result.Trace[idx].Changed = &changed

		if step.Expect != nil && step.Expect.Changed != nil && *step.Expect.Changed != changed {
			h.result.AddError(fmt.Sprintf("flow[%d]: %s on %s: expected changed=%t, got %t",
				i, op, step.Target, *step.Expect.Changed, changed))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"target", step.Target,
			"op", op,
			"changed", changed,
		)
	}
	return nil
}

func (h *Harness) snapshotState() {
	for _, name := range h.order {
		t := h.targets[name]
		h.result.State[name] = t.state()
		h.result.IDs[name] = t.id()
	}
}

func stepValue(step FlowStep) any {
	switch step.Op() {
	case OpSet:
		return step.Set
	case OpPatch:
		return step.Patch
	default:
		return nil
	}
}

func actionOptions(step FlowStep) []store.ActionOption {
	if step.ActionID == "" {
		return nil
	}
	return []store.ActionOption{store.WithActionID(step.ActionID)}
}

// dispatchStore runs a flow step against a primitive store.
func dispatchStore(s store.Store[any], step FlowStep) (bool, error) {
	var reducer store.Reducer[any]
	switch step.Op() {
	case OpSet:
		reducer = func(_ any, args ...any) store.Update[any] {
			return store.Set(args[0])
		}
	case OpPatch:
		current, ok := s.Get().(map[string]any)
		if !ok {
			return false, fmt.Errorf("patch on %s requires an object value, have %T", s.ID(), s.Get())
		}
		reducer = func(_ any, args ...any) store.Update[any] {
			next := maps.Clone(current)
			if next == nil {
				next = make(map[string]any)
			}
			maps.Copy(next, args[0].(map[string]any))
			return store.Set[any](next)
		}
	case OpNoop:
		reducer = func(any, ...any) store.Update[any] {
			return store.NoChange[any]()
		}
	default:
		return false, fmt.Errorf("no operation given")
	}
	return s.Action(reducer, actionOptions(step)...)(stepValue(step)), nil
}

// dispatchJoin runs a flow step against a join. Set and patch both write the
// given keys.
func dispatchJoin(j *join.Store, step FlowStep) (bool, error) {
	var values map[string]any
	switch step.Op() {
	case OpSet:
		m, ok := step.Set.(map[string]any)
		if !ok {
			return false, fmt.Errorf("set on join %s requires an object, have %T", j.ID(), step.Set)
		}
		values = m
	case OpPatch:
		values = step.Patch
	case OpNoop:
		noop := j.Action(func(join.Snapshot, ...any) store.Update[join.Snapshot] {
			return store.NoChange[join.Snapshot]()
		}, actionOptions(step)...)
		return noop(), nil
	default:
		return false, fmt.Errorf("no operation given")
	}

	write := j.Action(func(_ join.Snapshot, args ...any) store.Update[join.Snapshot] {
		return store.Set(join.Patch(args[0].(map[string]any)))
	}, actionOptions(step)...)
	return write(values), nil
}
