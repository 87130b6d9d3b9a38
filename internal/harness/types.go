package harness

// Trace event types.
const (
	EventAction = "action"
	EventNotify = "notify"
)

// TraceEvent is one entry of a scenario trace: either a dispatched flow step
// or a watcher notification observed on a store or join.
type TraceEvent struct {
	Type   string `json:"type"` // "action" or "notify"
	Seq    int64  `json:"seq"`
	Target string `json:"target"`

	// ActionID is the id reported to watchers. On action events it is only
	// set when the step names one explicitly.
	ActionID string `json:"action_id,omitempty"`

	// Action events.
	Op      string `json:"op,omitempty"` // "set", "patch" or "noop"
	Value   any    `json:"value,omitempty"`
	Changed *bool  `json:"changed,omitempty"`

	// Notify events.
	State any `json:"state,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every flow expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists actions and notifications in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// State holds the final state of every store and join, by name.
	// Join states are plain maps.
	State map[string]any `json:"state,omitempty"`

	// IDs holds the store id of every store and join, by name.
	IDs map[string]string `json:"ids,omitempty"`
}

// NewResult creates a passing, empty result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
		IDs:    make(map[string]string),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addAction appends an action event and returns its index so the outcome
// can be filled in once the action returns.
func (r *Result) addAction(seq int64, target, actionID, op string, value any) int {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     EventAction,
		Seq:      seq,
		Target:   target,
		ActionID: actionID,
		Op:       op,
		Value:    value,
	})
	return len(r.Trace) - 1
}

func (r *Result) addNotify(seq int64, target, actionID string, state any) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     EventNotify,
		Seq:      seq,
		Target:   target,
		ActionID: actionID,
		State:    state,
	})
}
