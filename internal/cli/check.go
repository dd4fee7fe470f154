package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rvmodel/zcseq/internal/harness"
	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/testutil"
	"github.com/rvmodel/zcseq/internal/verify"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Random int    // number of random cycles (0 = scenario mode)
	Seed   int64  // stimulus seed for random mode
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// RandomCheckResult holds the result of a randomized property run.
type RandomCheckResult struct {
	Seed       int64    `json:"seed"`
	Cycles     int      `json:"cycles"`
	Handshakes int64    `json:"handshakes"`
	Violations []string `json:"violations,omitempty"`
	Pass       bool     `json:"pass"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [scenarios-dir]",
		Short: "Run conformance scenarios or a randomized property check",
		Long: `Check the sequencer model against conformance scenarios.

In scenario mode, every YAML scenario in the directory is executed and its
expect clauses and assertions are evaluated. In random mode (--random N),
N cycles of seeded stimulus are driven through the model while the
invariant monitor watches every cycle.

Exit codes:
  0 - All scenarios passed / no violations
  1 - One or more scenarios failed, or violations observed
  2 - Command error (invalid paths, etc.)

Examples:
  zcseq check ./scenarios
  zcseq check ./scenarios --filter "push-*"
  zcseq check --random 100000 --seed 42
  zcseq check ./scenarios --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Random > 0 {
				return runRandomCheck(opts, cmd)
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "scenarios directory required unless --random is set")
			}
			return runScenarioCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVar(&opts.Random, "random", 0, "drive N cycles of random stimulus instead of scenarios")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "stimulus seed for --random")

	return cmd
}

func runScenarioCheck(opts *CheckOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to find scenarios: %w", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputCheckJSON(cmd, CheckResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := CheckResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputCheckJSON(cmd, result)
	}
	return outputCheckText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *CheckOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(scenarioFile))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		return ScenarioResult{
			Name:   scenario.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	if result.Pass {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		}
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}

	if opts.Format != "json" {
		fmt.Fprintf(w, "✗ %s\n", scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   false,
		Errors: result.Errors,
	}
}

func runRandomCheck(opts *CheckOptions, cmd *cobra.Command) error {
	gen := testutil.NewStimulusGenerator(opts.Seed)
	sequencer := seq.New()
	tr := testutil.DriveRandom(sequencer, gen, opts.Random)

	monitor := verify.NewMonitor()
	monitor.ObserveTrace(tr)

	result := RandomCheckResult{
		Seed:       opts.Seed,
		Cycles:     opts.Random,
		Handshakes: tr.Handshakes(),
		Pass:       monitor.Ok(),
	}
	for _, v := range monitor.Violations() {
		result.Violations = append(result.Violations, v.Error())
	}

	if opts.Format == "json" {
		status := "ok"
		response := CLIResponse{Status: status, Data: result}
		if !result.Pass {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "E_VIOLATION",
				Message: fmt.Sprintf("%d violation(s) observed", len(result.Violations)),
			}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		if !result.Pass {
			return NewExitError(ExitFailure, "violations observed")
		}
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Random check: %d cycles, seed %d\n", result.Cycles, result.Seed)
	fmt.Fprintf(w, "Handshakes: %d\n", result.Handshakes)
	if result.Pass {
		fmt.Fprintln(w, "✓ No violations observed")
		return nil
	}
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
	fmt.Fprintf(w, "✗ %d violation(s) observed\n", len(result.Violations))
	return NewExitError(ExitFailure, "violations observed")
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(cmd *cobra.Command, result CheckResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputCheckText outputs the check result as text.
func outputCheckText(cmd *cobra.Command, result CheckResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
