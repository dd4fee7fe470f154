package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rvmodel/zcseq/internal/store"
	"github.com/rvmodel/zcseq/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Kind     string // optional - filter to cycles offering this kind
}

// TraceCycle is one cycle of the timeline, flattened for display.
type TraceCycle struct {
	Cycle     int64  `json:"cycle"`
	Kind      string `json:"kind"`
	Inputs    string `json:"inputs"`
	Outputs   string `json:"outputs"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Handshake bool   `json:"handshake"`
}

// TraceStats holds summary statistics for the run.
type TraceStats struct {
	TotalCycles int   `json:"total_cycles"`
	Handshakes  int64 `json:"handshakes"`
	Kills       int   `json:"kills"`
	Halts       int   `json:"halts"`
	Stalls      int   `json:"stalls"`
	Violations  int64 `json:"violations"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string       `json:"run_id"`
	Label    string       `json:"label"`
	Timeline []TraceCycle `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Dump the timeline of a stored run",
		Long: `Dump the cycle-by-cycle timeline of a stored run.

The output includes:
- Timeline: per-cycle inputs, outputs, and state on both edges
- Stats: handshakes, kills, halts, stall cycles, stored violations

Examples:
  zcseq trace --db ./traces.db --run 3f1c...
  zcseq trace --db ./traces.db --run 3f1c... --kind PUSH
  zcseq trace --db ./traces.db --run 3f1c... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to cycles offering this kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.GetRun(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to get run", err)
	}

	tr, err := st.ReadTrace(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	result := TraceResult{
		RunID:    run.ID,
		Label:    run.Label,
		Timeline: buildTimeline(tr, opts.Kind),
		Stats:    buildStats(tr, run),
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result)
}

// buildTimeline flattens trace records for display. When kindFilter is
// set, only cycles offering that kind are included.
func buildTimeline(tr trace.Trace, kindFilter string) []TraceCycle {
	var timeline []TraceCycle

	for _, r := range tr {
		if kindFilter != "" && r.Inputs.Kind.String() != kindFilter {
			continue
		}

		timeline = append(timeline, TraceCycle{
			Cycle:     r.Cycle,
			Kind:      r.Inputs.Kind.String(),
			Inputs:    formatInputs(r),
			Outputs:   formatOutputs(r),
			Before:    fmt.Sprintf("%s/%d", r.Before.FSM, r.Before.Count),
			After:     fmt.Sprintf("%s/%d", r.After.FSM, r.After.Count),
			Handshake: r.Handshake(),
		})
	}

	return timeline
}

// formatInputs renders the asserted input signals of one cycle.
func formatInputs(r trace.Record) string {
	var parts []string
	if r.Inputs.Valid {
		parts = append(parts, "valid")
	}
	if r.Inputs.Kill {
		parts = append(parts, "kill")
	}
	if r.Inputs.Halt {
		parts = append(parts, "halt")
	}
	if r.Inputs.Ready {
		parts = append(parts, "ready")
	}
	if r.Inputs.Flags.TblJmp {
		parts = append(parts, "tbljmp")
	}
	if r.Inputs.Flags.TblJmpPtr {
		parts = append(parts, "tbljmp_ptr")
	}
	if r.Inputs.Flags.ClicPtr {
		parts = append(parts, "clic_ptr")
	}
	if r.Inputs.Flags.MretPtr {
		parts = append(parts, "mret_ptr")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// formatOutputs renders the asserted output signals of one cycle.
func formatOutputs(r trace.Record) string {
	var parts []string
	if r.Outputs.Ready {
		parts = append(parts, "ready")
	}
	if r.Outputs.Valid {
		parts = append(parts, "valid")
	}
	if r.Outputs.Last {
		parts = append(parts, "last")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// buildStats computes summary statistics for the run.
func buildStats(tr trace.Trace, run *store.Run) TraceStats {
	stats := TraceStats{
		TotalCycles: len(tr),
		Handshakes:  tr.Handshakes(),
		Violations:  run.Violations,
	}
	for _, r := range tr {
		if r.Inputs.Kill {
			stats.Kills++
		}
		if r.Inputs.Halt {
			stats.Halts++
		}
		if r.Outputs.Valid && !r.Inputs.Ready {
			stats.Stalls++
		}
	}
	return stats
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Run: %s (%s)\n", result.RunID, result.Label)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no cycles)")
	} else {
		for _, c := range result.Timeline {
			mark := " "
			if c.Handshake {
				mark = "*"
			}
			fmt.Fprintf(w, "  [%4d]%s %-8s in:%-30s out:%-18s %s -> %s\n",
				c.Cycle, mark, c.Kind, c.Inputs, c.Outputs, c.Before, c.After)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Cycles: %d\n", result.Stats.TotalCycles)
	fmt.Fprintf(w, "  Handshakes:   %d\n", result.Stats.Handshakes)
	fmt.Fprintf(w, "  Kills:        %d\n", result.Stats.Kills)
	fmt.Fprintf(w, "  Halts:        %d\n", result.Stats.Halts)
	fmt.Fprintf(w, "  Stalls:       %d\n", result.Stats.Stalls)
	fmt.Fprintf(w, "  Violations:   %d\n", result.Stats.Violations)

	return nil
}
