package join

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/adv0cat/quench-store/internal/ids"
	"github.com/adv0cat/quench-store/internal/store"
)

// ApplyMode controls how a composite action writes the keys it returned.
type ApplyMode int

const (
	// ApplyAll writes every matched key and reports a change if any write
	// changed its input.
	ApplyAll ApplyMode = iota
	// ApplyFirstChange stops at the first write that changes its input.
	// Later keys in the same result are dropped.
	ApplyFirstChange
)

func (m ApplyMode) String() string {
	switch m {
	case ApplyAll:
		return "all"
	case ApplyFirstChange:
		return "first"
	default:
		return fmt.Sprintf("ApplyMode(%d)", int(m))
	}
}

// ParseApplyMode parses "all" (or "") and "first".
func ParseApplyMode(s string) (ApplyMode, error) {
	switch s {
	case "", "all":
		return ApplyAll, nil
	case "first":
		return ApplyFirstChange, nil
	default:
		return ApplyAll, fmt.Errorf("join: unknown apply mode %q", s)
	}
}

// Option configures a join.
type Option func(*Store)

// WithLogger sets the diagnostic logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Store) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithIDs sets the generator used for actions without an explicit id.
func WithIDs(gen ids.Generator) Option {
	return func(j *Store) {
		j.ids = gen
	}
}

// WithApplyMode sets the apply mode. The default is ApplyAll.
func WithApplyMode(mode ApplyMode) Option {
	return func(j *Store) {
		j.mode = mode
	}
}

// Store is a composite store over an ordered list of inputs.
type Store struct {
	id     string
	inputs []Input
	state  Snapshot

	watchers store.Notifier[Snapshot]
	routes   map[string]*route
	order    []*route       // distinct routes in input order
	bindings []*route       // route of each input, by input index
	writing  map[string]int // proxy writes in progress, by setter id

	mode      ApplyMode
	ids       ids.Generator
	logger    *slog.Logger
	notifying int
}

var _ store.Store[Snapshot] = (*Store)(nil)

// New builds a join over inputs. The input list is copied; its order fixes
// the snapshot key order and the write order of composite actions.
func New(inputs []Input, opts ...Option) (*Store, error) {
	if err := validate(inputs); err != nil {
		return nil, err
	}

	j := &Store{
		inputs: append([]Input(nil), inputs...),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}

	j.id = computeID(j.inputs)
	j.logger = j.logger.With(slog.String("store", j.id))
	j.state = j.computeSnapshot()
	j.subscribe()

	j.logger.Info("join created",
		slog.Int("inputs", len(j.inputs)),
		slog.Int("routes", len(j.order)),
		slog.String("apply", j.mode.String()),
	)
	return j, nil
}

// MustNew is like New but panics on invalid inputs.
func MustNew(inputs []Input, opts ...Option) *Store {
	j, err := New(inputs, opts...)
	if err != nil {
		panic(err)
	}
	return j
}

func validate(inputs []Input) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		if in.Key == "" {
			return fmt.Errorf("%w: input %d", ErrEmptyKey, i)
		}
		if in.source == nil {
			return fmt.Errorf("%w: %q", ErrNilStore, in.Key)
		}
		if _, ok := seen[in.Key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, in.Key)
		}
		seen[in.Key] = struct{}{}
	}
	return nil
}

// ID returns the composite id, e.g. "{a;b}".
func (j *Store) ID() string {
	return j.id
}

// Get returns the current snapshot.
func (j *Store) Get() Snapshot {
	return j.state
}

// Watch registers w. Watchers run synchronously in registration order.
func (j *Store) Watch(w store.Watcher[Snapshot]) store.Unsubscribe {
	return j.watchers.Watch(w)
}

// IsReadOnly reports false: writes are routed to the writable inputs.
func (j *Store) IsReadOnly() bool {
	return false
}

// Keys returns the input keys in order.
func (j *Store) Keys() []string {
	keys := make([]string, len(j.inputs))
	for i, in := range j.inputs {
		keys[i] = in.Key
	}
	return keys
}

// Close detaches the join from its inputs. Input changes are no longer
// observed afterwards. Close is idempotent and always returns nil.
func (j *Store) Close() error {
	for _, r := range j.order {
		if r.unsubscribe == nil {
			continue
		}
		r.unsubscribe()
		r.unsubscribe = nil
	}
	return nil
}

func (j *Store) notify(state Snapshot, info store.ActionInfo) {
	j.notifying++
	defer func() { j.notifying-- }()
	j.watchers.Notify(state, info)
}
