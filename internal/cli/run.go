package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adv0cat/quench-store/internal/harness"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print its trace",
		Long: `Run a YAML or CUE scenario: build its stores and joins, dispatch the
flow and print every action and notification, then check the assertions.

Store and join diagnostics are logged to stderr (debug level with --verbose).

Exit codes:
  0 - All assertions passed
  1 - An expectation or assertion failed
  2 - Command error (missing file, invalid scenario)

Examples:
  quench run ./scenarios/shared_store.yaml
  quench run ./scenarios/nested.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runScenarioFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "scenario not found", err)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s: %d store(s), %d join(s), %d step(s)",
		scenario.Name, len(scenario.Stores), len(scenario.Joins), len(scenario.Flow))

	logger := newLogger(opts, formatter.GetErrWriter())
	result, err := harness.Run(scenario, harness.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeRunFailed,
				Message: fmt.Sprintf("scenario %s failed", scenario.Name),
				Details: result.Errors,
			}
		}
		if err := formatter.Response(resp); err != nil {
			return err
		}
	} else {
		printTrace(cmd, scenario.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func printTrace(cmd *cobra.Command, name string, result *harness.Result) {
	w := cmd.OutOrStdout()
	for _, event := range result.Trace {
		fmt.Fprintln(w, harness.FormatEvent(event))
	}
	fmt.Fprintln(w)

	if result.Pass {
		fmt.Fprintf(w, "✓ %s\n", name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", name)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
