package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/rvmodel/zcseq/internal/harness"
	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/store"
	"github.com/rvmodel/zcseq/internal/trace"
	"github.com/rvmodel/zcseq/internal/verify"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Label    string
}

// RunSummary holds the persisted-run summary for output.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Label      string `json:"label"`
	Cycles     int    `json:"cycles"`
	Handshakes int64  `json:"handshakes"`
	Violations int    `json:"violations"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Drive a scenario and persist its trace",
		Long: `Drive a scenario's stimulus through the sequencer model and persist
the observed trace to a SQLite database.

The scenario file supplies the per-cycle input vectors; expect clauses and
assertions are ignored here (use check for conformance). The invariant
monitor still watches every cycle, and the violation count is stored with
the run.

Example:
  zcseq run --db ./traces.db ./scenarios/push-full-expansion.yaml
  zcseq run --db ./traces.db ./stimulus.yaml --label soak-1 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAndPersist(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Label, "label", "", "run label (defaults to the scenario name)")

	return cmd
}

func runAndPersist(opts *RunOptions, scenarioFile string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("loading scenario", "path", scenarioFile)
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	label := opts.Label
	if label == "" {
		label = scenario.Name
	}
	// Labels are lookup keys; normalize so visually identical labels
	// compare equal regardless of the editor that produced them.
	label = norm.NFC.String(label)

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	stimulus := scenario.Stimulus()
	sequencer := seq.New()
	monitor := verify.NewMonitor()
	tr := make(trace.Trace, 0, len(stimulus))

	slog.Info("driving stimulus", "scenario", scenario.Name, "cycles", len(stimulus))
	for _, in := range stimulus {
		before := sequencer.State()
		cycle := sequencer.Cycle()
		out := sequencer.Step(in)
		rec := trace.Record{
			Cycle:   cycle,
			Before:  before,
			Inputs:  in,
			Outputs: out,
			After:   sequencer.State(),
		}
		tr = append(tr, rec)

		for _, v := range monitor.Observe(rec) {
			slog.Warn("violation", "code", v.Code, "cycle", rec.Cycle, "message", v.Message)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runID, err := st.WriteRun(ctx, label, tr, len(monitor.Violations()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to persist run", err)
	}
	slog.Info("run persisted", "run_id", runID, "cycles", len(tr))

	summary := RunSummary{
		RunID:      runID,
		Label:      label,
		Cycles:     len(tr),
		Handshakes: tr.Handshakes(),
		Violations: len(monitor.Violations()),
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{Status: "ok", Data: summary}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s (%s)\n", summary.RunID, summary.Label)
		fmt.Fprintf(w, "  Cycles:     %d\n", summary.Cycles)
		fmt.Fprintf(w, "  Handshakes: %d\n", summary.Handshakes)
		fmt.Fprintf(w, "  Violations: %d\n", summary.Violations)
	}

	if summary.Violations > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d violation(s) observed", summary.Violations))
	}
	return nil
}
