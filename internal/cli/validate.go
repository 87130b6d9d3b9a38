package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adv0cat/quench-store/internal/harness"
)

// ScenarioCheck is the validation outcome of one scenario file.
type ScenarioCheck struct {
	Path  string            `json:"path"`
	Name  string            `json:"name,omitempty"`
	Valid bool              `json:"valid"`
	IDs   map[string]string `json:"ids,omitempty"`
	Error string            `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool            `json:"valid"`
	Scenarios []ScenarioCheck `json:"scenarios"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenarios without running them",
		Long: `Parse each scenario, check its references and build its stores and
joins without dispatching the flow. The composite id of every join is
reported.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true}
	for _, path := range paths {
		check := checkScenario(path)
		formatter.VerboseLog("Checked %s: valid=%t", path, check.Valid)
		if !check.Valid {
			result.Valid = false
		}
		result.Scenarios = append(result.Scenarios, check)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeLoadFailed, Message: "validation failed"}
		}
		if err := formatter.Response(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, check := range result.Scenarios {
			if check.Valid {
				fmt.Fprintf(w, "✓ %s (%s)\n", check.Path, check.Name)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n  %s\n", check.Path, check.Error)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func checkScenario(path string) ScenarioCheck {
	check := ScenarioCheck{Path: path}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	check.Name = scenario.Name

	h, err := harness.Build(scenario)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	defer h.Close()

	check.IDs = make(map[string]string)
	for _, name := range h.Targets() {
		id, _ := h.ID(name)
		check.IDs[name] = id
	}
	check.Valid = true
	return check
}
