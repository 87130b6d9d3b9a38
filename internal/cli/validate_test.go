package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedYAML = `name: nested
description: A join over a join
stores:
  - id: a
    value: 1
  - id: b
    value: 2
  - id: c
    value: 3
joins:
  - name: ab
    inputs:
      - key: x
        store: a
      - key: y
        store: b
  - name: abc
    apply: first
    inputs:
      - key: pair
        store: ab
      - key: z
        store: c
flow:
  - target: c
    set: 4
assertions:
  - type: store_id
    target: abc
    id: "{{a;b};c}"
`

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommandMissingArgs(t *testing.T) {
	_, err := executeValidate(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestValidateCommandValid(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "nested.yaml", nestedYAML)

	out, err := executeValidate(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" (nested)")
}

func TestValidateCommandReportsIDs(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "nested.yaml", nestedYAML)

	out, err := executeValidate(t, "json", path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Scenarios, 1)

	check := resp.Data.Scenarios[0]
	assert.Equal(t, "nested", check.Name)
	assert.Equal(t, map[string]string{
		"a":   "a",
		"b":   "b",
		"c":   "c",
		"ab":  "{a;b}",
		"abc": "{{a;b};c}",
	}, check.IDs)
}

func TestValidateCommandInvalid(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "nested.yaml", nestedYAML)
	bad := writeScenario(t, dir, "broken.yaml", unknownStoreYAML)

	out, err := executeValidate(t, "text", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, `unknown store "missing"`)
}

func TestValidateCommandInvalidJSON(t *testing.T) {
	bad := writeScenario(t, t.TempDir(), "broken.yaml", unknownStoreYAML)

	out, err := executeValidate(t, "json", bad, "/nonexistent/scenario.yaml")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.False(t, resp.Data.Scenarios[0].Valid)
	assert.Contains(t, resp.Data.Scenarios[1].Error, "failed to read scenario file")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
}

func TestValidateCommandUnsupportedExtension(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "scenario.json", "{}")

	out, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Contains(t, out, "unsupported scenario file extension")
}
