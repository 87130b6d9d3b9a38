package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestRun_StorePatchMergesObject(t *testing.T) {
	scenario := &Scenario{
		Name:        "store_patch",
		Description: "patch on an object store",
		Stores:      []StoreDef{{ID: "cfg", Value: map[string]any{"a": 1, "b": 2}}},
		Flow: []FlowStep{
			{Target: "cfg", Patch: map[string]any{"b": 3, "c": 4}, Expect: &ExpectClause{Changed: boolPtr(true)}},
		},
		Assertions: []Assertion{
			{Type: AssertFinalState, Target: "cfg", Expect: map[string]any{"a": 1, "b": 3, "c": 4}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_StorePatchRequiresObject(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_patch",
		Description: "patch on a scalar store",
		Stores:      []StoreDef{{ID: "n", Value: 1}},
		Flow:        []FlowStep{{Target: "n", Patch: map[string]any{"x": 1}}},
		Assertions:  []Assertion{{Type: AssertFinalState, Target: "n", Expect: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an object value")
}

func TestRun_JoinSetRequiresObject(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_set",
		Description: "scalar set on a join",
		Stores:      []StoreDef{{ID: "a", Value: 1}},
		Joins:       []JoinDef{{Name: "j", Inputs: []InputDef{{Key: "x", Store: "a"}}}},
		Flow:        []FlowStep{{Target: "j", Set: 5}},
		Assertions:  []Assertion{{Type: AssertFinalState, Target: "a", Expect: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an object")
}

func TestRun_JoinSetWritesKeys(t *testing.T) {
	scenario := &Scenario{
		Name:        "join_set",
		Description: "set on a join",
		Stores:      []StoreDef{{ID: "a", Value: 1}, {ID: "b", Value: 2}},
		Joins:       []JoinDef{{Name: "j", Inputs: []InputDef{{Key: "x", Store: "a"}, {Key: "y", Store: "b"}}}},
		Flow:        []FlowStep{{Target: "j", Set: map[string]any{"x": 3, "y": 4}, ActionID: "both"}},
		Assertions: []Assertion{
			{Type: AssertFinalState, Target: "j", Expect: map[string]any{"x": 3, "y": 4}},
			{Type: AssertNotifyCount, Target: "j", Count: intPtr(1)},
			{Type: AssertTraceContains, Target: "j", ActionID: "both", State: map[string]any{"x": 3, "y": 4}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "{a;b}", result.IDs["j"])
}

func TestRun_ReadOnlyStoreRejectsFlowWrites(t *testing.T) {
	scenario := &Scenario{
		Name:        "readonly_store",
		Description: "direct write to a read-only store",
		Stores:      []StoreDef{{ID: "r", Value: "v", ReadOnly: true}},
		Flow:        []FlowStep{{Target: "r", Set: "w", Expect: &ExpectClause{Changed: boolPtr(false)}}},
		Assertions:  []Assertion{{Type: AssertFinalState, Target: "r", Expect: "v"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation",
		Stores:      []StoreDef{{ID: "a", Value: 1}},
		Flow:        []FlowStep{{Target: "a", Set: 1, Expect: &ExpectClause{Changed: boolPtr(true)}}},
		Assertions:  []Assertion{{Type: AssertFinalState, Target: "a", Expect: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected changed=true, got false")
}

func TestRun_GeneratedActionIDsRestartPerRun(t *testing.T) {
	scenario := &Scenario{
		Name:        "ids",
		Description: "generated ids",
		Stores:      []StoreDef{{ID: "a", Value: 0}},
		Flow:        []FlowStep{{Target: "a", Set: 1}, {Target: "a", Set: 2}},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Target: "a", ActionID: "#2", State: 2},
		},
	}

	for range 2 {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}
}

func TestBuild_DoesNotRunFlow(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/nested.yaml")
	require.NoError(t, err)

	h, err := Build(scenario)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, []string{"a", "b", "c", "ab", "abc"}, h.Targets())
	id, ok := h.ID("abc")
	require.True(t, ok)
	assert.Equal(t, "{{a;b};c}", id)
	_, ok = h.ID("missing")
	assert.False(t, ok)
}

func TestRun_LogsFlowSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	scenario, err := LoadScenario("testdata/scenarios/basic_write.yaml")
	require.NoError(t, err)

	_, err = Run(scenario, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "join created")
	assert.Contains(t, out, "flow step completed")
	assert.Contains(t, out, "input change suppressed")
}
