package harness

import (
	"fmt"
	"strings"

	"github.com/adv0cat/quench-store/internal/canonical"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // assertion type
	Expected string       // human-readable expected outcome
	Actual   string       // human-readable actual outcome
	Trace    []TraceEvent // full trace, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", FormatEvent(event))
		}
	}
	return buf.String()
}

// FormatEvent renders an event on one line, e.g.
// "[3] notify ab #2 {"x":5}".
func FormatEvent(e TraceEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s %s", e.Seq, e.Type, e.Target)
	if e.ActionID != "" {
		fmt.Fprintf(&b, " %s", e.ActionID)
	}
	switch e.Type {
	case EventAction:
		fmt.Fprintf(&b, " %s", e.Op)
		if e.Value != nil {
			fmt.Fprintf(&b, " %s", render(e.Value))
		}
		if e.Changed != nil {
			fmt.Fprintf(&b, " changed=%t", *e.Changed)
		}
	case EventNotify:
		fmt.Fprintf(&b, " %s", render(e.State))
	}
	return b.String()
}

// render returns the canonical JSON of v, or a Go rendering if v has no
// canonical form.
func render(v any) string {
	data, err := canonical.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// sameValue compares two values by canonical encoding, so 3 and 3.0 or maps
// built in different orders compare equal.
func sameValue(a, b any) bool {
	ca, errA := canonical.Marshal(a)
	cb, errB := canonical.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ca) == string(cb)
}

// assertNotifyCount checks the number of notifications on a target,
// optionally restricted to one action id.
func assertNotifyCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type != EventNotify || event.Target != assertion.Target {
			continue
		}
		if assertion.ActionID != "" && event.ActionID != assertion.ActionID {
			continue
		}
		count++
	}

	if count != *assertion.Count {
		what := assertion.Target
		if assertion.ActionID != "" {
			what += " with action " + assertion.ActionID
		}
		return &AssertionError{
			Type:     AssertNotifyCount,
			Expected: fmt.Sprintf("%d notifications on %s", *assertion.Count, what),
			Actual:   fmt.Sprintf("%d notifications", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState compares the final state of a target.
func assertFinalState(result *Result, assertion Assertion) error {
	actual, ok := result.State[assertion.Target]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state of %s", assertion.Target),
			Actual:   "target not found",
		}
	}
	if !sameValue(assertion.Expect, actual) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Target, render(assertion.Expect)),
			Actual:   fmt.Sprintf("%s = %s", assertion.Target, render(actual)),
		}
	}
	return nil
}

// assertStoreID compares the store id of a target.
func assertStoreID(result *Result, assertion Assertion) error {
	actual, ok := result.IDs[assertion.Target]
	if !ok || actual != assertion.ID {
		return &AssertionError{
			Type:     AssertStoreID,
			Expected: fmt.Sprintf("id of %s = %q", assertion.Target, assertion.ID),
			Actual:   fmt.Sprintf("%q", actual),
		}
	}
	return nil
}

// assertTraceContains checks that an event matching every given field is in
// the trace.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	eventType := assertion.Event
	if eventType == "" {
		eventType = EventNotify
	}

	for _, event := range trace {
		if event.Type != eventType || event.Target != assertion.Target {
			continue
		}
		if assertion.ActionID != "" && event.ActionID != assertion.ActionID {
			continue
		}
		if assertion.State != nil && !sameValue(assertion.State, event.State) {
			continue
		}
		if assertion.Changed != nil && (event.Changed == nil || *event.Changed != *assertion.Changed) {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("%s event on %s", eventType, assertion.Target)
	if assertion.ActionID != "" {
		expected += fmt.Sprintf(" with action %s", assertion.ActionID)
	}
	if assertion.State != nil {
		expected += fmt.Sprintf(" with state %s", render(assertion.State))
	}
	if assertion.Changed != nil {
		expected += fmt.Sprintf(" with changed=%t", *assertion.Changed)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against result and returns
// one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertNotifyCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: notify_count requires count", i)
			} else {
				err = assertNotifyCount(result.Trace, assertion)
			}
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		case AssertStoreID:
			err = assertStoreID(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
