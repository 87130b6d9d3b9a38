package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/adv0cat/quench-store/internal/join"
)

// Scenario declares stores, joins over them, a flow of actions and the
// assertions that must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Stores are the primitive stores, created in order.
	Stores []StoreDef `yaml:"stores" json:"stores"`

	// Joins are created in order after the stores. An input may refer to a
	// store id or to the name of an earlier join.
	Joins []JoinDef `yaml:"joins,omitempty" json:"joins,omitempty"`

	// Flow is the list of actions to dispatch.
	Flow []FlowStep `yaml:"flow" json:"flow"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// StoreDef declares a primitive store.
type StoreDef struct {
	ID       string `yaml:"id" json:"id"`
	Value    any    `yaml:"value" json:"value"`
	ReadOnly bool   `yaml:"read_only,omitempty" json:"read_only,omitempty"`
}

// JoinDef declares a join.
type JoinDef struct {
	Name   string     `yaml:"name" json:"name"`
	Inputs []InputDef `yaml:"inputs" json:"inputs"`
	// Apply is "all" (default) or "first".
	Apply string `yaml:"apply,omitempty" json:"apply,omitempty"`
}

// InputDef binds a key to a store id or join name.
type InputDef struct {
	Key   string `yaml:"key" json:"key"`
	Store string `yaml:"store" json:"store"`
}

// FlowStep dispatches one action on a store or join. Exactly one of Set,
// Patch and Noop must be given.
type FlowStep struct {
	// Target is a store id or a join name.
	Target string `yaml:"target" json:"target"`

	// Set replaces a store value. On a join it must be an object and
	// behaves like Patch.
	Set any `yaml:"set,omitempty" json:"set,omitempty"`

	// Patch writes the given keys. On a store the current value must be an
	// object; the keys are merged into a copy of it.
	Patch map[string]any `yaml:"patch,omitempty" json:"patch,omitempty"`

	// Noop dispatches an action whose reducer returns NoChange.
	Noop bool `yaml:"noop,omitempty" json:"noop,omitempty"`

	// ActionID names the action. Empty means a generated id.
	ActionID string `yaml:"action_id,omitempty" json:"action_id,omitempty"`

	Expect *ExpectClause `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Op returns "set", "patch" or "noop", or "" if the step names none.
func (s FlowStep) Op() string {
	switch {
	case s.Set != nil:
		return OpSet
	case s.Patch != nil:
		return OpPatch
	case s.Noop:
		return OpNoop
	default:
		return ""
	}
}

func (s FlowStep) opCount() int {
	n := 0
	if s.Set != nil {
		n++
	}
	if s.Patch != nil {
		n++
	}
	if s.Noop {
		n++
	}
	return n
}

// Flow step operations.
const (
	OpSet   = "set"
	OpPatch = "patch"
	OpNoop  = "noop"
)

// ExpectClause checks the outcome of a flow step.
type ExpectClause struct {
	// Changed is the expected return value of the action.
	Changed *bool `yaml:"changed,omitempty" json:"changed,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of notify_count, final_state, store_id, trace_contains.
	Type string `yaml:"type" json:"type"`

	// Target is the store id or join name the assertion is about.
	Target string `yaml:"target" json:"target"`

	// Count is the expected number of notifications (notify_count).
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`

	// Expect is the expected final state (final_state).
	Expect any `yaml:"expect,omitempty" json:"expect,omitempty"`

	// ID is the expected store id (store_id).
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Event is the event type to look for (trace_contains); default notify.
	Event string `yaml:"event,omitempty" json:"event,omitempty"`

	// ActionID filters by action id (notify_count, trace_contains).
	ActionID string `yaml:"action_id,omitempty" json:"action_id,omitempty"`

	// State is the expected notified state (trace_contains).
	State any `yaml:"state,omitempty" json:"state,omitempty"`

	// Changed is the expected action outcome (trace_contains on actions).
	Changed *bool `yaml:"changed,omitempty" json:"changed,omitempty"`
}

// Assertion type constants.
const (
	AssertNotifyCount   = "notify_count"
	AssertFinalState    = "final_state"
	AssertStoreID       = "store_id"
	AssertTraceContains = "trace_contains"
)

// LoadScenario reads a scenario file. The format follows the extension:
// .yaml/.yml or .cue.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported scenario file extension %q", ext)
	}
}

// IsScenarioFile reports whether path has a scenario extension.
func IsScenarioFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".cue":
		return true
	default:
		return false
	}
}

// ParseYAML parses and validates a YAML scenario. Unknown fields are rejected.
func ParseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ParseCUE compiles a CUE scenario and decodes it. The value must be
// concrete. filename is used in error positions only.
func ParseCUE(data []byte, filename string) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE scenario is not concrete: %w", err)
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and cross references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Stores) == 0 {
		return fmt.Errorf("stores list is required and must be non-empty")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, st := range s.Stores {
		if st.ID == "" {
			return fmt.Errorf("stores[%d]: id is required", i)
		}
		if names[st.ID] {
			return fmt.Errorf("stores[%d]: duplicate name %q", i, st.ID)
		}
		names[st.ID] = true
	}

	for i, j := range s.Joins {
		if j.Name == "" {
			return fmt.Errorf("joins[%d]: name is required", i)
		}
		if names[j.Name] {
			return fmt.Errorf("joins[%d]: duplicate name %q", i, j.Name)
		}
		if len(j.Inputs) == 0 {
			return fmt.Errorf("joins[%d]: inputs list is required and must be non-empty", i)
		}
		for k, in := range j.Inputs {
			if in.Key == "" {
				return fmt.Errorf("joins[%d].inputs[%d]: key is required", i, k)
			}
			if !names[in.Store] {
				return fmt.Errorf("joins[%d].inputs[%d]: unknown store %q", i, k, in.Store)
			}
		}
		if _, err := join.ParseApplyMode(j.Apply); err != nil {
			return fmt.Errorf("joins[%d]: %w", i, err)
		}
		// Registered last so a join cannot refer to itself.
		names[j.Name] = true
	}

	for i, step := range s.Flow {
		if step.Target == "" {
			return fmt.Errorf("flow[%d]: target is required", i)
		}
		if !names[step.Target] {
			return fmt.Errorf("flow[%d]: unknown target %q", i, step.Target)
		}
		if step.opCount() != 1 {
			return fmt.Errorf("flow[%d]: exactly one of set, patch, noop is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, names map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Target == "" {
		return fmt.Errorf("assertions[%d]: target is required", index)
	}
	if !names[a.Target] {
		return fmt.Errorf("assertions[%d]: unknown target %q", index, a.Target)
	}

	switch a.Type {
	case AssertNotifyCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for notify_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notify_count", index)
		}
	case AssertFinalState:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertStoreID:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for store_id", index)
		}
	case AssertTraceContains:
		switch a.Event {
		case "", EventNotify, EventAction:
		default:
			return fmt.Errorf("assertions[%d]: unknown event %q for trace_contains", index, a.Event)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
