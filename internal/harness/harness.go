package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rvmodel/zcseq/internal/seq"
	"github.com/rvmodel/zcseq/internal/store"
	"github.com/rvmodel/zcseq/internal/trace"
	"github.com/rvmodel/zcseq/internal/verify"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh sequencer, a fresh property monitor,
// and a fresh in-memory trace store for isolation. Execution:
//
//  1. Drive the stimulus cycle by cycle through the real transition function
//  2. Observe every cycle with the property monitor
//  3. Check per-cycle expect clauses as they execute
//  4. Persist the trace and replay it from the store (determinism check)
//  5. Evaluate end-of-run assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	sequencer := seq.New()
	monitor := verify.NewMonitor()
	result := NewResult()

	for stepIdx, step := range scenario.Cycles {
		repeat := step.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			before := sequencer.State()
			cycle := sequencer.Cycle()
			out := sequencer.Step(step.Inputs)

			rec := trace.Record{
				Cycle:   cycle,
				Before:  before,
				Inputs:  step.Inputs,
				Outputs: out,
				After:   sequencer.State(),
			}
			result.Trace = append(result.Trace, rec)

			for _, v := range monitor.Observe(rec) {
				result.AddError(v.Error())
			}

			checkExpect(result, stepIdx, step.Expect, rec)

			logger.Debug("cycle executed",
				"cycle", cycle,
				"kind", step.Inputs.Kind.String(),
				"valid_o", out.Valid,
				"ready_o", out.Ready,
			)
		}
	}

	result.Violations = monitor.Violations()
	result.Final = result.Trace.Final()

	// Persist and replay: the stored run must reproduce bit-for-bit.
	ctx := context.Background()
	runID, err := st.WriteRun(ctx, scenario.Name, result.Trace, len(result.Violations))
	if err != nil {
		return nil, fmt.Errorf("failed to persist trace: %w", err)
	}
	result.RunID = runID

	replay, err := st.ReplayRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay trace: %w", err)
	}
	if !replay.Deterministic {
		result.AddError(fmt.Sprintf("stored trace did not replay deterministically (%d mismatches)",
			len(replay.Mismatches)))
	}

	EvaluateAssertions(result, scenario.Assertions)
	return result, nil
}

// checkExpect validates one cycle against its expect clause, if any.
func checkExpect(result *Result, stepIdx int, expect *ExpectClause, rec trace.Record) {
	if expect == nil {
		return
	}
	if expect.Outputs != nil && *expect.Outputs != rec.Outputs {
		result.AddError(fmt.Sprintf(
			"cycles[%d] cycle %d: outputs %+v, expected %+v",
			stepIdx, rec.Cycle, rec.Outputs, *expect.Outputs))
	}
	if expect.After != nil && *expect.After != rec.After {
		result.AddError(fmt.Sprintf(
			"cycles[%d] cycle %d: state %s/%d, expected %s/%d",
			stepIdx, rec.Cycle, rec.After.FSM, rec.After.Count,
			expect.After.FSM, expect.After.Count))
	}
}
