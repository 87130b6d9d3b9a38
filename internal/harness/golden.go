package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/adv0cat/quench-store/internal/canonical"
)

// TraceSnapshot is the golden-file form of a scenario trace.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot to plain values for canonical JSON.
// Empty optional fields are omitted; notify events always carry a state.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		m := map[string]any{
			"type":   event.Type,
			"seq":    event.Seq,
			"target": event.Target,
		}
		if event.ActionID != "" {
			m["action_id"] = event.ActionID
		}
		if event.Op != "" {
			m["op"] = event.Op
		}
		if event.Value != nil {
			m["value"] = event.Value
		}
		if event.Changed != nil {
			m["changed"] = *event.Changed
		}
		if event.Type == EventNotify {
			m["state"] = event.State
		}
		events[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	}
}

// MarshalTrace returns the canonical JSON golden form of a trace.
func MarshalTrace(scenarioName string, trace []TraceEvent) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: trace}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden runs scenario and compares its trace with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace with its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
